package fx

import (
	"github.com/orgball2608/insta-feed-harvester/internal/repositories/archive"
	"go.uber.org/fx"
)

var Module = fx.Options(
	archive.Module,
)
