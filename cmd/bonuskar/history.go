package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bonuskar/internal/history"
)

var (
	itemFlags     []string
	notesFlag     string
	caseSensitive bool

	dateOn   string
	dateFrom string
	dateTo   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query and edit the recorded shopping history",
}

var historyRecentCmd = &cobra.Command{
	Use:   "recent [n]",
	Short: "Show the most recent shopping lists",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 5
		if len(args) == 1 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil || parsed < 0 {
				return fmt.Errorf("invalid count %q", args[0])
			}
			n = parsed
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		fmt.Print(store.FormatRecentLists(n))
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one shopping list as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		list, ok := store.ByID(args[0])
		if !ok {
			return fmt.Errorf("no shopping list with id %s", args[0])
		}
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search item titles, notes and categories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		return printLists(store.Search(args[0]))
	},
}

var historyProductCmd = &cobra.Command{
	Use:   "product <name>",
	Short: "Find lists containing a product",
	Long: `Matching is by substring in either direction: "melk" finds lists
with "AH Halfvolle melk" and the other way around.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		return printLists(store.QueryByProduct(args[0], caseSensitive))
	},
}

var historyCategoryCmd = &cobra.Command{
	Use:   "category <name>",
	Short: "Find lists containing items of a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		return printLists(store.QueryByCategory(args[0]))
	},
}

var historyDateCmd = &cobra.Command{
	Use:   "date",
	Short: "Find lists by date or date range (YYYY-MM-DD)",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if dateOn != "" {
			return printLists(store.QueryByDay(dateOn))
		}
		if dateFrom == "" && dateTo == "" {
			return fmt.Errorf("pass --on, or --from and/or --to")
		}
		return printLists(store.QueryByDateRange(dateFrom, dateTo))
	},
}

var historyNotesCmd = &cobra.Command{
	Use:   "notes <keyword>",
	Short: "Find lists whose notes contain a keyword",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		return printLists(store.QueryByNotes(args[0]))
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics over the whole history",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		stats := store.Statistics()

		fmt.Printf("Total lists: %d\n", stats.TotalLists)
		fmt.Printf("Total items: %d\n", stats.TotalItems)
		fmt.Printf("Average items per list: %.2f\n", stats.AverageItemsPerList)
		if stats.DateRange != nil {
			fmt.Printf("Date range: %s .. %s\n", stats.DateRange.First, stats.DateRange.Last)
		}
		if len(stats.TopProducts) > 0 {
			fmt.Println("Top products:")
			for i, product := range stats.TopProducts {
				fmt.Printf("  %d. %s (%d)\n", i+1, product.Name, product.Count)
			}
		}
		return nil
	},
}

var historyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a shopping list by hand",
	Long: `Each --item takes comma-separated key=value pairs:

  bonuskar history add --item "title=AH Halfvolle melk,price=€1.09,quantity=2" \
      --item "title=Brood" --notes "manual entry"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := parseItemFlags(itemFlags)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("pass at least one --item")
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		id, err := store.Add(items, notesFlag)
		if err != nil {
			return fmt.Errorf("list %s recorded in memory but not saved: %w", id, err)
		}
		fmt.Printf("Recorded shopping list %s\n", id)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a shopping list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		removed, err := store.Delete(args[0])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("no shopping list with id %s", args[0])
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var historyUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a shopping list's items and/or notes",
	Long: `Only the passed flags change: --item flags replace the item set
(and refresh the list date), --notes replaces the notes. Omitted parts
stay untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var items []history.Item
		if len(itemFlags) > 0 {
			parsed, err := parseItemFlags(itemFlags)
			if err != nil {
				return err
			}
			items = parsed
		}

		var notes *string
		if cmd.Flags().Changed("notes") {
			notes = &notesFlag
		}
		if items == nil && notes == nil {
			return fmt.Errorf("pass --item and/or --notes")
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		updated, err := store.Update(args[0], items, notes)
		if err != nil {
			return err
		}
		if !updated {
			return fmt.Errorf("no shopping list with id %s", args[0])
		}
		fmt.Printf("Updated %s\n", args[0])
		return nil
	},
}

func init() {
	historyProductCmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "Match case exactly")

	historyDateCmd.Flags().StringVar(&dateOn, "on", "", "Exact day (YYYY-MM-DD)")
	historyDateCmd.Flags().StringVar(&dateFrom, "from", "", "Range start, inclusive")
	historyDateCmd.Flags().StringVar(&dateTo, "to", "", "Range end, inclusive")

	historyAddCmd.Flags().StringArrayVar(&itemFlags, "item", nil, "Item as key=value pairs (title required)")
	historyAddCmd.Flags().StringVar(&notesFlag, "notes", "", "Notes for the list")

	historyUpdateCmd.Flags().StringArrayVar(&itemFlags, "item", nil, "Replacement item as key=value pairs")
	historyUpdateCmd.Flags().StringVar(&notesFlag, "notes", "", "Replacement notes")

	historyCmd.AddCommand(historyRecentCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyProductCmd)
	historyCmd.AddCommand(historyCategoryCmd)
	historyCmd.AddCommand(historyDateCmd)
	historyCmd.AddCommand(historyNotesCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyAddCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyUpdateCmd)
}

func printLists(lists []history.ShoppingList) error {
	if len(lists) == 0 {
		fmt.Println("No matching shopping lists.")
		return nil
	}
	for _, list := range lists {
		notes := ""
		if list.Notes != "" {
			notes = "  " + list.Notes
		}
		fmt.Printf("%s  %s  %d item(s)%s\n", list.Date.DayKey(), list.ID, len(list.Items), notes)
	}
	return nil
}

// parseItemFlags turns --item "title=X,price=Y,quantity=2" values into items.
func parseItemFlags(flags []string) ([]history.Item, error) {
	var items []history.Item
	for _, raw := range flags {
		var item history.Item
		for _, pair := range strings.Split(raw, ",") {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("malformed item field %q, want key=value", pair)
			}
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)
			switch key {
			case "title":
				item.Title = value
			case "price":
				item.Price = value
			case "quantity":
				quantity, err := strconv.Atoi(value)
				if err != nil {
					return nil, fmt.Errorf("invalid quantity %q", value)
				}
				item.Quantity = quantity
			case "category":
				item.Category = value
			case "description":
				item.Description = value
			case "url":
				item.ProductURL = value
			default:
				return nil, fmt.Errorf("unknown item field %q", key)
			}
		}
		if item.Title == "" {
			return nil, fmt.Errorf("item %q has no title", raw)
		}
		items = append(items, item)
	}
	return items, nil
}
