package places

import (
	"fmt"

	"github.com/rzane/advanced-demo/internal/db"
)

// Init creates or updates the states and cities tables.
func Init() error {
	if err := db.DB.AutoMigrate(&State{}, &City{}); err != nil {
		return fmt.Errorf("failed to auto-migrate places tables: %w", err)
	}
	return nil
}
