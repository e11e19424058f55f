package projection

import (
	"fmt"

	"github.com/ttomita/ccfs/ccf/config"
)

func errNonFinite(kind config.ProjectionKind) error {
	return fmt.Errorf("%w: %s projection produced a non-finite entry", config.ErrInvariant, kind)
}
