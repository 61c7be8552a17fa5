//go:build gofuzz

package rc4

// OSS-Fuzz builds native fuzz targets against this shim.
import _ "github.com/AdamKorcz/go-118-fuzz-build/testing"
