package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ingestdomain "github.com/shelfpulselabs/shelfpulse/internal/ingest/domain"
	"go.uber.org/zap"
)

// csvColumns is the expected header of a raw scrape batch, in order.
var csvColumns = []string{
	"timestamp", "l1_category_id", "l2_category_id", "store_id", "sku_id",
	"sku_name", "selling_price", "mrp", "inventory", "image_url",
	"brand_id", "brand", "unit",
}

func (s *Service) IngestCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvColumns)

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("%w: missing header", ingestdomain.ErrMalformedCSV)
	}
	for i, col := range csvColumns {
		if strings.TrimSpace(header[i]) != col {
			return 0, fmt.Errorf("%w: header column %d is %q, want %q", ingestdomain.ErrMalformedCSV, i, header[i], col)
		}
	}

	var batch []ingestdomain.CreateEventRequest
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return 0, fmt.Errorf("%w: line %d: %v", ingestdomain.ErrMalformedCSV, line, err)
		}

		ev, err := parseCSVRecord(record)
		if err != nil {
			// Malformed rows fail the whole batch; partial ingestion of
			// a file would skew the derived metrics silently.
			return 0, fmt.Errorf("%w: line %d: %v", ingestdomain.ErrMalformedCSV, line, err)
		}
		batch = append(batch, ev)
	}

	if len(batch) == 0 {
		return 0, ingestdomain.ErrEmptyBatch
	}

	s.log.Info("parsed raw event batch", zap.Int("rows", len(batch)))
	return s.IngestEvents(ctx, batch)
}

func parseCSVRecord(record []string) (ingestdomain.CreateEventRequest, error) {
	var ev ingestdomain.CreateEventRequest

	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(record[0]))
	if err != nil {
		return ev, fmt.Errorf("timestamp: %v", err)
	}
	l1, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
	if err != nil {
		return ev, fmt.Errorf("l1_category_id: %v", err)
	}
	l2, err := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
	if err != nil {
		return ev, fmt.Errorf("l2_category_id: %v", err)
	}
	sellingPrice, err := parseOptionalFloat(record[6])
	if err != nil {
		return ev, fmt.Errorf("selling_price: %v", err)
	}
	mrp, err := parseOptionalFloat(record[7])
	if err != nil {
		return ev, fmt.Errorf("mrp: %v", err)
	}
	inventory, err := strconv.ParseInt(strings.TrimSpace(record[8]), 10, 64)
	if err != nil {
		return ev, fmt.Errorf("inventory: %v", err)
	}

	ev = ingestdomain.CreateEventRequest{
		RecordedAt:   ts,
		L1CategoryID: l1,
		L2CategoryID: l2,
		StoreID:      strings.TrimSpace(record[3]),
		SkuID:        strings.TrimSpace(record[4]),
		SkuName:      strings.TrimSpace(record[5]),
		SellingPrice: sellingPrice,
		MRP:          mrp,
		Inventory:    inventory,
		ImageURL:     strings.TrimSpace(record[9]),
		BrandID:      strings.TrimSpace(record[10]),
		Brand:        strings.TrimSpace(record[11]),
		Unit:         strings.TrimSpace(record[12]),
	}
	return ev, nil
}

func parseOptionalFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
