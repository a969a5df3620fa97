package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/bloodwork-sync/internal/common"
	"github.com/joseph-ayodele/bloodwork-sync/internal/record"
)

// LoadExpected loads the ground-truth record for a PDF filename from the
// expected-data directory. Both "<name>.pdf.json" and "<stem>.json" naming
// conventions are accepted. Returns ErrNotFound when no file exists.
func LoadExpected(dir, pdfName string) (*record.Record, error) {
	stem := strings.TrimSuffix(pdfName, filepath.Ext(pdfName))
	candidates := []string{
		filepath.Join(dir, pdfName+".json"),
		filepath.Join(dir, stem+".json"),
	}
	for _, path := range candidates {
		b, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read expected data %s: %w", path, err)
		}
		rec, _, err := record.ParseRecord(b)
		if err != nil {
			return nil, fmt.Errorf("parse expected data %s: %w", path, err)
		}
		return rec, nil
	}
	return nil, common.NewAppError("VALIDATION",
		fmt.Sprintf("no expected data found for %s in %s", pdfName, dir), common.ErrNotFound)
}
