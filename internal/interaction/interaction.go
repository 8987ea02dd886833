package interaction

import "github.com/san-kum/swarmlab/internal/swarm"

// spatialWidth is the number of leading state columns shared by both
// populations, over which pair geometry is computed.
func spatialWidth(target, source *swarm.Population) int {
	k := target.InputDim()
	if s := source.InputDim(); s < k {
		k = s
	}
	return k
}
