// Package all registers every fstate command.
package all

import (
	_ "github.com/keshon/fstate/internal/command/diff"
	_ "github.com/keshon/fstate/internal/command/record"
	_ "github.com/keshon/fstate/internal/command/show"
	_ "github.com/keshon/fstate/internal/command/sync"
	_ "github.com/keshon/fstate/internal/command/version"
)
