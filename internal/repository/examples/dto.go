package examples

import (
	"encoding/binary"
	"math"

	"github.com/veldt-labs/modex/internal/db"
	"github.com/veldt-labs/modex/internal/domain"
)

// Hash field names. fieldEmbedding holds the little-endian float32 blob the
// FT index reads.
const (
	fieldDocument  = "document"
	fieldLabel     = "label"
	fieldCategory  = "category"
	fieldEmbedding = "embedding"
)

func examplePrefix(collection string) string {
	return domain.KeyPrefix + "example:" + collection + ":"
}

func exampleKey(collection, id string) string {
	return examplePrefix(collection) + id
}

func indexName(collection string) string {
	return "idx:" + collection
}

func fingerprintKey(collection string) string {
	return domain.KeyPrefix + "corpus_fp:" + collection
}

func buildExampleFields(ex *domain.Example, vector []float32) map[string]string {
	fields := map[string]string{
		fieldDocument:  ex.Text,
		fieldLabel:     string(ex.Label),
		fieldEmbedding: string(vectorToBlob(vector)),
	}
	if ex.Category != "" {
		fields[fieldCategory] = ex.Category
	}
	return fields
}

func entryToRetrieved(e *db.SearchEntry) domain.Retrieved {
	return domain.Retrieved{
		Text:     e.Fields[fieldDocument],
		Label:    domain.Label(e.Fields[fieldLabel]),
		Category: e.Fields[fieldCategory],
		Distance: e.Distance,
	}
}

func vectorToBlob(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
