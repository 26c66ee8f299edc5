package machines

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/agentstation/messcurator/pkg/errors"
)

const rootFolderSection = "[ROOT_FOLDER]"

// ParseFolderINI returns the sorted, de-duplicated machine names listed in
// the [ROOT_FOLDER] section of a front-end folder ini. Lines starting with
// ';' and trailing ';' comments are ignored.
func ParseFolderINI(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	inRoot := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inRoot = strings.EqualFold(line, rootFolderSection)
			continue
		}
		if !inRoot || line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if i := strings.Index(line, ";"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line != "" {
			seen[line] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewParseError("ini", "", "folder ini", err)
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}
