package schemes

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

//go:embed default_schemes.json
var defaultSchemes []byte

// Seed loads the default scheme catalogue into an empty table. It returns
// the number of rows inserted.
func Seed(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&GovScheme{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count schemes: %w", err)
	}
	if count > 0 {
		slog.Info("scheme seeding skipped", "existing", count)
		return 0, nil
	}

	var reqs []SchemeRequest
	if err := json.Unmarshal(defaultSchemes, &reqs); err != nil {
		return 0, fmt.Errorf("decode default schemes: %w", err)
	}
	list := make([]GovScheme, 0, len(reqs))
	for i := range reqs {
		list = append(list, fromRequest(&reqs[i]))
	}
	if err := db.Create(&list).Error; err != nil {
		return 0, fmt.Errorf("insert default schemes: %w", err)
	}

	slog.Info("schemes seeded", "count", len(list))
	return len(list), nil
}
