package signal_test

import (
	"fmt"

	"github.com/cwbudde/algo-neurofeedback/dsp/signal"
)

func ExampleDefaultMontage() {
	m := signal.DefaultMontage(16)
	left, right := m.Probes()
	fmt.Println(m[left].Label, m[left].Role)
	fmt.Println(m[right].Label, m[right].Role)
	// Output:
	// F-L1 probe-left
	// F-R1 probe-right
}
