// Package corpus loads the labeled example corpus used as retrieval
// candidates, either from the builtin seed set or from a CSV file.
package corpus

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/veldt-labs/modex/internal/domain"
)

// Seed is the builtin labeled example set, used when no CSV path is
// configured. Mirrors the original moderation sample data.
func Seed() []domain.Example {
	return []domain.Example{
		{ID: "seed-0", Text: "XYZ group should not exist.", Label: domain.LabelHateSpeech},
		{ID: "seed-1", Text: "People from ABC group are not human.", Label: domain.LabelHateSpeech},
		{ID: "seed-2", Text: "Some communities are a threat to society.", Label: domain.LabelModerate},
		{ID: "seed-3", Text: "I strongly disagree with their politics.", Label: domain.LabelModerate},
		{ID: "seed-4", Text: "All people deserve equal rights.", Label: domain.LabelSafe},
		{ID: "seed-5", Text: "The government should protect minorities.", Label: domain.LabelSafe},
	}
}

// Load produces the example corpus. With an empty path it returns the
// builtin seed set; otherwise it reads the CSV at path. A configured path
// that does not exist fails with domain.ErrMissingDataSource.
func Load(path string) ([]domain.Example, error) {
	if path == "" {
		return Seed(), nil
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("corpus file %s: %w", path, domain.ErrMissingDataSource)
		}
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()

	examples, err := parseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}
	return examples, nil
}

// parseCSV reads records with Text and Label columns (optional Category).
// Rows with empty Text are dropped, not defaulted. Identity is the row index.
func parseCSV(r io.Reader) ([]domain.Example, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	textCol, labelCol, categoryCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "text":
			textCol = i
		case "label":
			labelCol = i
		case "category":
			categoryCol = i
		}
	}
	if textCol < 0 || labelCol < 0 {
		return nil, fmt.Errorf("corpus requires Text and Label columns, got %v", header)
	}

	var examples []domain.Example
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		row++

		text := strings.TrimSpace(field(record, textCol))
		if text == "" {
			continue
		}

		ex := domain.Example{
			ID:    "row-" + strconv.Itoa(row-1),
			Text:  text,
			Label: domain.Label(strings.TrimSpace(field(record, labelCol))),
		}
		if categoryCol >= 0 {
			ex.Category = strings.TrimSpace(field(record, categoryCol))
		}
		examples = append(examples, ex)
	}

	return examples, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

// Fingerprint hashes the ordered corpus records. The indexer stores it next
// to the vector index so a changed corpus triggers re-indexing instead of
// relying on an item count of zero.
func Fingerprint(examples []domain.Example) string {
	h := sha256.New()
	for _, ex := range examples {
		h.Write([]byte(ex.ID))
		h.Write([]byte{0})
		h.Write([]byte(ex.Text))
		h.Write([]byte{0})
		h.Write([]byte(ex.Label))
		h.Write([]byte{0})
		h.Write([]byte(ex.Category))
		h.Write([]byte{0xff})
	}
	return hex.EncodeToString(h.Sum(nil))
}
