package configs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PolarWolf314/foldervault/internal/utils"

	"github.com/BurntSushi/toml"
)

// SaveTOML encodes data and replaces filePath atomically.
func SaveTOML(filePath string, data interface{}) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(data); err != nil {
		return err
	}
	return utils.WriteFileAtomic(filePath, buf.Bytes(), 0600)
}

// LoadTOML decodes filePath into data. Unknown keys are ignored so that
// hand-edited configs survive upgrades and downgrades.
func LoadTOML(filePath string, data interface{}) error {
	_, err := toml.DecodeFile(filePath, data)
	return err
}

// LoadTOMLStrict is LoadTOML for files foldervault writes itself: any key
// the target does not declare is an error.
func LoadTOMLStrict(filePath string, data interface{}) error {
	md, err := toml.DecodeFile(filePath, data)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%s: unexpected keys: %s", filePath, strings.Join(keys, ", "))
	}
	return nil
}
