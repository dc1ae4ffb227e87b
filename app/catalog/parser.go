package catalog

import (
	"bytes"
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

const merchantPrefix = "g"

// Parser reads Google Merchant product feeds (RSS 2.0 with the g: namespace).
type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) ([]Record, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	records := make([]Record, 0, len(feed.Items))
	for i, item := range feed.Items {
		record, err := p.normalizeItem(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) (Record, error) {
	record := Record{
		ProductID:   cmp.Or(merchantValue(item, "id"), item.GUID, item.Link),
		ProductName: strings.TrimSpace(cmp.Or(merchantValue(item, "title"), item.Title)),
	}

	if raw := merchantValue(item, "price"); raw != "" {
		price, err := parsePrice(raw)
		if err != nil {
			return Record{}, err
		}
		record.Price = price
	}

	if item.PublishedParsed != nil {
		record.BoughtDate = item.PublishedParsed.UTC().Format(DateLayout)
	} else if item.UpdatedParsed != nil {
		record.BoughtDate = item.UpdatedParsed.UTC().Format(DateLayout)
	}

	return record, nil
}

// parsePrice accepts Merchant price strings such as "15.00 USD".
func parsePrice(raw string) (float64, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty price")
	}

	price, err := strconv.ParseFloat(strings.TrimPrefix(fields[0], "$"), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", raw, err)
	}
	return price, nil
}

func merchantValue(item *gofeed.Item, name string) string {
	if item.Extensions == nil {
		return ""
	}
	values := lookupExtension(item.Extensions[merchantPrefix], name)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0].Value)
}

func lookupExtension(elements map[string][]ext.Extension, name string) []ext.Extension {
	if elements == nil {
		return nil
	}
	return elements[name]
}
