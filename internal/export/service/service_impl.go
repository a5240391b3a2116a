package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/shelfpulselabs/shelfpulse/internal/config"
	exportdomain "github.com/shelfpulselabs/shelfpulse/internal/export/domain"
	insightsdomain "github.com/shelfpulselabs/shelfpulse/internal/insights/domain"
	insightsrepository "github.com/shelfpulselabs/shelfpulse/internal/insights/repository"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	dir  string
	repo insightsdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Config config.Config
}

func NewService(p ServiceParam) exportdomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("export.service"),
		dir:  p.Config.Export.Dir,
		repo: insightsrepository.Provide(),
	}
}

func (s *Service) Export(ctx context.Context, format exportdomain.Format) (exportdomain.ExportResult, error) {
	rows, err := s.repo.ListAllCityInsights(ctx, s.db)
	if err != nil {
		return exportdomain.ExportResult{}, err
	}
	if len(rows) == 0 {
		return exportdomain.ExportResult{}, exportdomain.ErrNothingToExport
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return exportdomain.ExportResult{}, err
	}

	filename := fmt.Sprintf("city_insights_%s.%s", uuid.NewString(), format)
	path := filepath.Join(s.dir, filename)

	switch format {
	case exportdomain.FormatCSV:
		err = writeCSV(path, rows)
	case exportdomain.FormatParquet:
		err = writeParquet(path, rows)
	default:
		return exportdomain.ExportResult{}, exportdomain.ErrUnsupportedFormat
	}
	if err != nil {
		return exportdomain.ExportResult{}, err
	}

	s.log.Info("exported city insights",
		zap.String("format", string(format)),
		zap.String("path", path),
		zap.Int("rows", len(rows)))

	return exportdomain.ExportResult{
		Path:     path,
		Filename: filename,
		Format:   format,
		Rows:     len(rows),
	}, nil
}

var csvHeader = []string{
	"date", "city_name", "sku_id", "sku_name", "brand_id", "brand",
	"image_url", "category_id", "category_name", "sub_category_id",
	"sub_category_name", "inventory", "est_qty_sold", "est_sales_mrp",
	"est_sales_sp", "discount", "listed_ds_count", "ds_count",
	"wt_osa", "wt_osa_ls", "mrp_mode", "selling_price_mode",
}

func writeCSV(path string, rows []insightsdomain.CityInsight) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.InsightDate.UTC().Format("2006-01-02"),
			row.CityName,
			row.SkuID,
			row.SkuName,
			row.BrandID,
			row.Brand,
			row.ImageURL,
			strconv.FormatInt(row.CategoryID, 10),
			row.CategoryName,
			strconv.FormatInt(row.SubCategoryID, 10),
			row.SubCategoryName,
			strconv.FormatInt(row.Inventory, 10),
			strconv.FormatInt(row.EstQtySold, 10),
			formatFloat(row.EstSalesMRP),
			formatFloat(row.EstSalesSP),
			formatFloatPtr(row.Discount),
			formatInt64Ptr(row.ListedDSCount),
			formatInt64Ptr(row.DSCount),
			formatFloatPtr(row.WtOSA),
			formatFloatPtr(row.WtOSALs),
			formatFloatPtr(row.MRPMode),
			formatFloatPtr(row.SellingPriceMode),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// cityInsightParquet mirrors the published row with a flat schema; optional
// columns carry their absence through to the file.
type cityInsightParquet struct {
	Date            string `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	CityName        string `parquet:"name=city_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	SkuID           string `parquet:"name=sku_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	SkuName         string `parquet:"name=sku_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	BrandID         string `parquet:"name=brand_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Brand           string `parquet:"name=brand, type=BYTE_ARRAY, convertedtype=UTF8"`
	CategoryID      int64  `parquet:"name=category_id, type=INT64"`
	CategoryName    string `parquet:"name=category_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	SubCategoryID   int64  `parquet:"name=sub_category_id, type=INT64"`
	SubCategoryName string `parquet:"name=sub_category_name, type=BYTE_ARRAY, convertedtype=UTF8"`

	Inventory   int64   `parquet:"name=inventory, type=INT64"`
	EstQtySold  int64   `parquet:"name=est_qty_sold, type=INT64"`
	EstSalesMRP float64 `parquet:"name=est_sales_mrp, type=DOUBLE"`
	EstSalesSP  float64 `parquet:"name=est_sales_sp, type=DOUBLE"`

	Discount         *float64 `parquet:"name=discount, type=DOUBLE, repetitiontype=OPTIONAL"`
	ListedDSCount    *int64   `parquet:"name=listed_ds_count, type=INT64, repetitiontype=OPTIONAL"`
	DSCount          *int64   `parquet:"name=ds_count, type=INT64, repetitiontype=OPTIONAL"`
	WtOSA            *float64 `parquet:"name=wt_osa, type=DOUBLE, repetitiontype=OPTIONAL"`
	WtOSALs          *float64 `parquet:"name=wt_osa_ls, type=DOUBLE, repetitiontype=OPTIONAL"`
	MRPMode          *float64 `parquet:"name=mrp_mode, type=DOUBLE, repetitiontype=OPTIONAL"`
	SellingPriceMode *float64 `parquet:"name=selling_price_mode, type=DOUBLE, repetitiontype=OPTIONAL"`
}

func writeParquet(path string, rows []insightsdomain.CityInsight) error {
	f, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}

	pw, err := writer.NewParquetWriter(f, new(cityInsightParquet), 4)
	if err != nil {
		f.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		rec := cityInsightParquet{
			Date:            row.InsightDate.UTC().Format("2006-01-02"),
			CityName:        row.CityName,
			SkuID:           row.SkuID,
			SkuName:         row.SkuName,
			BrandID:         row.BrandID,
			Brand:           row.Brand,
			CategoryID:      row.CategoryID,
			CategoryName:    row.CategoryName,
			SubCategoryID:   row.SubCategoryID,
			SubCategoryName: row.SubCategoryName,
			Inventory:       row.Inventory,
			EstQtySold:      row.EstQtySold,
			EstSalesMRP:     row.EstSalesMRP,
			EstSalesSP:      row.EstSalesSP,

			Discount:         row.Discount,
			ListedDSCount:    row.ListedDSCount,
			DSCount:          row.DSCount,
			WtOSA:            row.WtOSA,
			WtOSALs:          row.WtOSALs,
			MRPMode:          row.MRPMode,
			SellingPriceMode: row.SellingPriceMode,
		}
		if err := pw.Write(rec); err != nil {
			pw.WriteStop()
			f.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatInt64Ptr(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
