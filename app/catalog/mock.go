package catalog

import (
	"fmt"
	"time"
)

var mockProducts = []string{
	"Wireless Mouse", "Mechanical Keyboard", "USB-C Hub", "Laptop Stand",
	"Noise Cancelling Headphones", "Webcam", "Desk Lamp", "Monitor Arm",
	"External SSD", "Ergonomic Chair", "Bluetooth Speaker", "Phone Charger",
}

var mockEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// MockCorpus returns n deterministic records.
func MockCorpus(n int) []Record {
	records := make([]Record, 0, max(n, 0))
	for i := range n {
		name := mockProducts[i%len(mockProducts)]
		records = append(records, Record{
			ProductID:   fmt.Sprintf("%d", i+1),
			ProductName: fmt.Sprintf("%s #%d", name, i+1),
			Price:       float64(10 + (i*37)%490),
			BoughtDate:  mockEpoch.AddDate(0, 0, i*3).Format(DateLayout),
		})
	}
	return records
}
