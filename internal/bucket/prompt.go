package bucket

import (
	"fmt"
	"strings"

	"bonuskar/internal/history"
	"bonuskar/internal/scraper"
)

const basePrompt = `You are an intelligent shopping assistant. Please categorize products into different buckets based on user shopping requirements.

Bucket classification rules:
1. Essentials (essentials) - Daily essential basic products, such as milk, eggs, bread, etc.
2. Meat (meat) - Various meats and proteins
3. Vegetables (vegetables) - Fresh vegetables
4. Fruit (fruit) - Fresh fruits
5. Snacks (snacks) - Snacks, sweets, etc.
6. Beverages (beverages) - Various drinks
7. Other (other) - Other products

Please generate reasonable product lists for each bucket based on user requirements and discount product information.`

const defaultRequirements = "Buy healthy ingredients for a week, including meat, vegetables, fruits, and essentials"

// buildPrompt assembles the complete LLM prompt: base rules, the product
// list, recent purchase volumes and the user's requirements.
func buildPrompt(products []scraper.Product, userPrompt string, recentHistory []history.ShoppingList) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\nAvailable discount products:\n")

	limit := len(products)
	if limit > promptProductLimit {
		limit = promptProductLimit
	}
	for _, p := range products[:limit] {
		fmt.Fprintf(&b, "- %s | %s | Discount: %d%%\n", p.Title, p.Price, p.Discount)
	}

	if len(recentHistory) > 0 {
		b.WriteString("\nRecent shopping history:\n")
		historyLimit := len(recentHistory)
		if historyLimit > promptHistoryLimit {
			historyLimit = promptHistoryLimit
		}
		for _, list := range recentHistory[:historyLimit] {
			fmt.Fprintf(&b, "- Purchased %d items\n", len(list.Items))
		}
	}

	requirements, mustBuy := parseUserPrompt(userPrompt)
	if requirements == "" {
		requirements = defaultRequirements
	}

	b.WriteString("\nUser requirements:\n")
	b.WriteString(requirements)
	b.WriteString("\n")

	if mustBuy != "" {
		b.WriteString("\nIMPORTANT - Must-buy items:\n")
		b.WriteString(mustBuy)
		b.WriteString("\n\nYou MUST include these items in the shopping list. Match the quantities and specifications as closely as possible from the available products.\n")
	}

	b.WriteString(`
Please select appropriate products for each bucket, maximum 10 products per bucket.
Return JSON format:
{
  "essentials": [{"title": "Product name", "price": "Price", "quantity": 1, "reason": "Selection reason"}],
  "meat": [...],
  "vegetables": [...],
  "fruit": [...],
  "snacks": [...],
  "beverages": [...],
  "other": [...]
}`)

	return b.String()
}

// parseUserPrompt splits a prompt into its "Shopping Requirements:" and
// "Must-buy Items:" sections. A prompt without section markers is treated
// entirely as requirements.
func parseUserPrompt(userPrompt string) (requirements, mustBuy string) {
	if userPrompt == "" {
		return "", ""
	}
	if !strings.Contains(userPrompt, "Shopping Requirements:") &&
		!strings.Contains(userPrompt, "Must-buy Items:") {
		return userPrompt, ""
	}

	var requirementLines, mustBuyLines []string
	section := ""
	for _, line := range strings.Split(userPrompt, "\n") {
		switch {
		case strings.Contains(line, "Shopping Requirements:"):
			section = "requirements"
			_, rest, _ := strings.Cut(line, "Shopping Requirements:")
			if rest = strings.TrimSpace(rest); rest != "" {
				requirementLines = append(requirementLines, rest)
			}
		case strings.Contains(line, "Must-buy Items:"):
			section = "mustbuy"
			_, rest, _ := strings.Cut(line, "Must-buy Items:")
			if rest = strings.TrimSpace(rest); rest != "" {
				mustBuyLines = append(mustBuyLines, rest)
			}
		case strings.TrimSpace(line) != "":
			switch section {
			case "requirements":
				requirementLines = append(requirementLines, strings.TrimSpace(line))
			case "mustbuy":
				mustBuyLines = append(mustBuyLines, strings.TrimSpace(line))
			}
		}
	}
	return strings.Join(requirementLines, "\n"), strings.Join(mustBuyLines, "\n")
}
