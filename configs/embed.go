// Package configs embeds the static game data tables. The catalog, recipe
// graph and progression ladder are loaded from these once at startup and
// are immutable afterwards.
package configs

import _ "embed"

//go:embed items.json
var Items []byte

//go:embed recipes.json
var Recipes []byte

//go:embed ladder.json
var Ladder []byte
