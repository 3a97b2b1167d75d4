package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bonuskar/internal/bucket"
	"bonuskar/internal/cart"
	"bonuskar/internal/history"
	"bonuskar/internal/scraper"
)

var (
	scrapeNoCache bool
	scrapeBrowser bool

	promptFile  string
	bucketsOut  string
	bucketsFile string
)

// runCmd executes the full weekly pipeline.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape, classify, fill the cart and record the shopping list",
	Long: `Runs the full pipeline:
  1. Scrape the current bonus products (cache-aware)
  2. Classify them into shopping buckets (LLM, keyword fallback)
  3. Add the selected products to the AH.nl cart
  4. Record the shopping list in the local history
  5. Drop the product cache so the next run scrapes fresh promotions`,
	RunE: runPipeline,
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the bonus products and print a discount summary",
	RunE:  runScrape,
}

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "Classify the scraped products into shopping buckets",
	RunE:  runBuckets,
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Add the latest recorded shopping list to the cart",
	RunE:  runCart,
}

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeNoCache, "no-cache", false, "Ignore the product cache")
	scrapeCmd.Flags().BoolVar(&scrapeBrowser, "browser", false, "Skip the lightweight fetch and use the browser directly")

	bucketsCmd.Flags().StringVar(&promptFile, "prompt-file", "", "File with shopping requirements and must-buy items")
	bucketsCmd.Flags().StringVar(&bucketsOut, "output", "", "Write the generated buckets to this JSON file")

	cartCmd.Flags().StringVar(&bucketsFile, "buckets-file", "", "Add products from this buckets JSON file instead of the history")

	runCmd.Flags().StringVar(&promptFile, "prompt-file", "", "File with shopping requirements and must-buy items")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s := scraper.New(cfg)
	products, err := s.Scrape(ctx, scraper.DefaultOptions())
	if err != nil {
		return fmt.Errorf("scrape bonus products: %w", err)
	}
	fmt.Println(scraper.Summary(products))

	store, err := openStore()
	if err != nil {
		return err
	}

	buckets, err := generateBuckets(cmd, products, store.Recent(10))
	if err != nil {
		return err
	}
	fmt.Println(bucket.Format(buckets))

	items := buckets.Flatten()
	if len(items) == 0 {
		return fmt.Errorf("no products selected, nothing to add")
	}

	automation := cart.New(cfg.Cart.BaseURL, cfg.Cart.Headless)
	automation.WaitForLogin = waitForEnter
	result, err := automation.AddItems(ctx, items, printProgress)
	if err != nil {
		return fmt.Errorf("cart automation: %w", err)
	}
	printCartResult(result)

	id, err := store.Add(items, fmt.Sprintf("bonuskar run: %s", result.Message))
	if err != nil {
		logger.Warn("History not saved, retry with 'bonuskar history add'", zap.Error(err))
	} else {
		fmt.Printf("Recorded shopping list %s (%d items)\n", id, len(items))
	}

	if err := s.DeleteCache(); err != nil {
		logger.Warn("Could not delete product cache", zap.Error(err))
	}
	return nil
}

func runScrape(cmd *cobra.Command, args []string) error {
	s := scraper.New(cfg)
	opts := scraper.Options{
		UseCache:          !scrapeNoCache,
		PreferLightweight: !scrapeBrowser,
	}
	products, err := s.Scrape(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("scrape bonus products: %w", err)
	}
	fmt.Println(scraper.Summary(products))
	return nil
}

func runBuckets(cmd *cobra.Command, args []string) error {
	s := scraper.New(cfg)
	products, err := s.Scrape(cmd.Context(), scraper.DefaultOptions())
	if err != nil {
		return fmt.Errorf("scrape bonus products: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	buckets, err := generateBuckets(cmd, products, store.Recent(10))
	if err != nil {
		return err
	}
	fmt.Println(bucket.Format(buckets))

	if bucketsOut != "" {
		data, err := json.MarshalIndent(buckets, "", "  ")
		if err != nil {
			return fmt.Errorf("encode buckets: %w", err)
		}
		if err := os.WriteFile(bucketsOut, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", bucketsOut, err)
		}
		fmt.Printf("Buckets written to %s\n", bucketsOut)
	}
	return nil
}

func runCart(cmd *cobra.Command, args []string) error {
	var items []history.Item

	if bucketsFile != "" {
		data, err := os.ReadFile(bucketsFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", bucketsFile, err)
		}
		var buckets bucket.Buckets
		if err := json.Unmarshal(data, &buckets); err != nil {
			return fmt.Errorf("parse %s: %w", bucketsFile, err)
		}
		items = buckets.Flatten()
	} else {
		store, err := openStore()
		if err != nil {
			return err
		}
		latest, ok := store.Latest()
		if !ok {
			return fmt.Errorf("no recorded shopping lists; run 'bonuskar run' first")
		}
		fmt.Printf("Adding list %s (%s, %d items) to the cart\n",
			latest.ID, latest.Date.DayKey(), len(latest.Items))
		items = latest.Items
	}

	if len(items) == 0 {
		return fmt.Errorf("nothing to add")
	}

	automation := cart.New(cfg.Cart.BaseURL, cfg.Cart.Headless)
	automation.WaitForLogin = waitForEnter
	result, err := automation.AddItems(cmd.Context(), items, printProgress)
	if err != nil {
		return fmt.Errorf("cart automation: %w", err)
	}
	printCartResult(result)

	return automation.ViewCart(cmd.Context())
}

// generateBuckets wires the configured LLM client (or the keyword
// fallback) and the optional prompt file into one generation run.
func generateBuckets(cmd *cobra.Command, products []scraper.Product, recent []history.ShoppingList) (bucket.Buckets, error) {
	client, err := bucket.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		fmt.Println("No LLM API key configured; classifying by keywords")
	}

	userPrompt := ""
	path := promptFile
	if path == "" {
		path = cfg.Files.PromptFile
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			userPrompt = string(data)
		} else if promptFile != "" {
			// An explicitly requested prompt file must exist.
			return nil, fmt.Errorf("read prompt file: %w", err)
		}
	}

	return bucket.NewGenerator(client).Generate(cmd.Context(), products, userPrompt, recent)
}

func printProgress(title string, ok bool) {
	status := "added"
	if !ok {
		status = "FAILED"
	}
	fmt.Printf("  %-8s %s\n", status, title)
}

func printCartResult(result cart.Result) {
	fmt.Printf("\n%s\n", result.Message)
	if len(result.FailedProducts) > 0 {
		fmt.Printf("Failed products (%d):\n", len(result.FailedProducts))
		for _, title := range result.FailedProducts {
			fmt.Printf("  - %s\n", title)
		}
	}
}

func waitForEnter() {
	fmt.Println("Please log in in the browser window, then press ENTER to continue...")
	reader := bufio.NewReader(os.Stdin)
	_, _ = reader.ReadString('\n')
}
