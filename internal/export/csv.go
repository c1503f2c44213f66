package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vitor-labes/category-scraper/internal/domain"
)

var header = []string{"title", "price", "image_url", "product_url"}

// ToCSV writes products, in collection order, to a timestamped file in dir and
// returns its path.
func ToCSV(dir string, products []domain.Product, now time.Time) (string, error) {
	if len(products) == 0 {
		return "", fmt.Errorf("nenhum produto para exportar")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("erro ao criar diretório %s: %w", dir, err)
	}

	filename := fmt.Sprintf("products_%s.csv", now.Format("20060102_150405"))
	path := filepath.Join(dir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("erro ao criar arquivo: %w", err)
	}
	defer file.Close()

	// BOM so spreadsheet apps detect UTF-8
	if _, err := file.WriteString("\uFEFF"); err != nil {
		return "", fmt.Errorf("erro ao escrever arquivo: %w", err)
	}

	writer := csv.NewWriter(file)

	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("erro ao escrever cabeçalho: %w", err)
	}

	for _, p := range products {
		if err := writer.Write([]string{
			p.Title,
			strconv.FormatFloat(p.Price, 'f', 2, 64),
			p.ImageURL,
			p.ProductURL,
		}); err != nil {
			return "", fmt.Errorf("erro ao escrever linha %q: %w", p.Title, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("erro ao finalizar escrita: %w", err)
	}

	slog.Info("CSV exportado com sucesso",
		"filepath", path,
		"total_products", len(products),
	)

	return path, nil
}
