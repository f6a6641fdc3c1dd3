package archive

import (
	"fmt"
	"path"
	"strings"
)

func validateEntryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if len(name) > uint16Max {
		return fmt.Errorf("%w: name longer than %d bytes", ErrInvalidName, uint16Max)
	}
	if strings.HasPrefix(name, "/") {
		return fmt.Errorf("%w: %q must not be absolute", ErrInvalidName, name)
	}
	if strings.Contains(name, "\\") {
		return fmt.Errorf("%w: %q must use forward slashes", ErrInvalidName, name)
	}
	clean := path.Clean(name)
	if clean != name {
		return fmt.Errorf("%w: %q must be normalized as %q", ErrInvalidName, name, clean)
	}
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%w: %q must not escape the archive", ErrInvalidName, name)
	}
	return nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
