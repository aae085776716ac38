// Package builtin embeds the checklists shipped with comply.
package builtin

import "embed"

// FS contains one checklist file per built-in framework.
//
//go:embed *.json
var FS embed.FS
