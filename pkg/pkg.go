//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the module embedded at build time.
var Version = strings.TrimSpace(version)

const (
	// Name is the command name. It appears in help text and in the default
	// configuration and cache paths.
	Name = "formula"
	// Description is a one-line summary used in help output.
	Description = "Evaluate arithmetic formulas over named values"
)

// AuthorInfo is an author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
