package localdump

import (
	"fmt"
	"os"
)

func writeFile(abs string, contents []byte) error {
	f, err := os.Create(abs)
	if err != nil {
		return fmt.Errorf("localdump: couldn't create file %s: %w", abs, err)
	}

	defer f.Close()
	if _, err = f.Write(contents); err != nil {
		return fmt.Errorf("localdump: couldn't write to file %s: %w", abs, err)
	}

	return nil
}
