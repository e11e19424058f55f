package rotation

import (
	"fmt"

	"github.com/ttomita/ccfs/ccf/config"
)

var errRotForestNonFinite = fmt.Errorf("%w: rotation forest produced a non-finite entry", config.ErrInvariant)
