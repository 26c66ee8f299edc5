package output

import (
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/agentstation/messcurator/pkg/constants"
	"github.com/agentstation/messcurator/pkg/errors"
)

// Write formats data to w, or to path on fs when path is set.
func Write(fs afero.Fs, w io.Writer, path string, format Format, data any) error {
	if path == "" {
		return NewFormatter(format).Format(w, data)
	}
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := NewFormatter(format).Format(f, data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("close", path, err)
	}
	return nil
}
