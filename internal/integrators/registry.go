package integrators

import (
	"fmt"

	"github.com/san-kum/fkviz/internal/dynamo"
)

// Names lists the integrators accepted by Get.
var Names = []string{"euler", "rk4"}

func Get(name string) (dynamo.Integrator, error) {
	switch name {
	case "", "euler":
		return NewEuler(), nil
	case "rk4":
		return NewRK4(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names)
	}
}
