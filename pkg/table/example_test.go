package table_test

import (
	"fmt"

	"github.com/matzehuels/hexroute/pkg/table"
)

func ExampleEncodeLoader() {
	data, _ := table.EncodeLoader([]table.Row{{Key: 1, Mask: table.ExactMask, Route: 0x40}})
	fmt.Printf("% x\n", data[:16])
	fmt.Println(len(data))
	// Output:
	// 00 00 01 00 40 00 00 00 01 00 00 00 ff ff ff ff
	// 32
}
