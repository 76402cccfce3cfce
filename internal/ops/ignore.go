package ops

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

var defaultIgnoreLines = []string{
	// vcs
	".git/",
	".hg/",
	".svn/",
	// editors
	".vscode/",
	".idea/",
	"*.swp",
	"*~",
	// OS-specific
	".DS_Store",
	"Thumbs.db",
}

// IgnoreList decides which keys never leave the local directory. It combines
// a built-in list with gitignore-style rules read from a file in the root.
type IgnoreList struct {
	root   string
	file   string
	ignore *gitignore.GitIgnore
}

func NewIgnoreList(root, file string) *IgnoreList {
	return &IgnoreList{
		root: root,
		file: file,
	}
}

// Load compiles the rules. A missing ignore file is not an error.
func (il *IgnoreList) Load(logger *slog.Logger) {
	lines := append([]string(nil), defaultIgnoreLines...)

	if il.file != "" {
		lines = append(lines, il.file)

		ignorePath := filepath.Join(il.root, il.file)
		file, err := os.Open(ignorePath)
		if err == nil {
			defer file.Close()

			rules := 0
			scanner := bufio.NewScanner(file)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line != "" && !strings.HasPrefix(line, "#") {
					lines = append(lines, line)
					rules++
				}
			}

			if err := scanner.Err(); err != nil {
				logger.Warn("error reading ignore file", "path", ignorePath, "error", err)
			} else {
				logger.Debug("loaded ignore file", "path", ignorePath, "rules", rules)
			}
		} else if !os.IsNotExist(err) {
			logger.Warn("failed to open ignore file", "path", ignorePath, "error", err)
		}
	}

	il.ignore = gitignore.CompileIgnoreLines(lines...)
}

// ShouldIgnore takes a slash separated key relative to the root. Directory
// keys end with a slash.
func (il *IgnoreList) ShouldIgnore(key string) bool {
	if il == nil || il.ignore == nil {
		return false
	}
	return il.ignore.MatchesPath(key)
}
