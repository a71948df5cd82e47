package config

import "time"

const (
	DatabaseTimeLayout string = time.RFC3339

	ErrEnvNotFound string = "No .env file found"

	// Privileges
	PrivilegeView  string = "VIEW"
	PrivilegeAdmin string = "ADMIN"

	DefaultTheme string = "saga-blue"

	ExportFormatXLSX string = "xlsx"
	ExportFormatCSV  string = "csv"
)

var (
	ImageMimeTypes = map[string]bool{
		"image/png":  true,
		"image/jpeg": true,
		"image/gif":  true,
		"image/webp": true,
	}
)
