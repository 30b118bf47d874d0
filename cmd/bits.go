package cmd

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"diamond-node/consensus"

	"github.com/spf13/cobra"
)

var bitsCmd = &cobra.Command{
	Use:   "bits <compact-hex | target-hex>",
	Short: "Inspect a compact difficulty target",
	Long: `Decode a 32-bit compact target (8 hex digits) into its 256-bit
value, or encode a longer hex target into compact form.`,
	Args: cobra.ExactArgs(1),
	RunE: runBits,
}

func runBits(cmd *cobra.Command, args []string) error {
	arg := strings.TrimPrefix(strings.ToLower(args[0]), "0x")

	if len(arg) <= 8 {
		bits64, err := strconv.ParseUint(arg, 16, 32)
		if err != nil {
			return fmt.Errorf("invalid compact value %q: %v", args[0], err)
		}
		target, negative, overflow := consensus.CompactToBig(uint32(bits64))
		fmt.Printf("compact:  %08x\n", uint32(bits64))
		fmt.Printf("target:   %064x\n", target)
		fmt.Printf("negative: %t\n", negative)
		fmt.Printf("overflow: %t\n", overflow)
		if !negative && !overflow {
			fmt.Printf("work:     %d\n", consensus.CalcBlockWork(uint32(bits64)))
		}
		return nil
	}

	target, ok := new(big.Int).SetString(arg, 16)
	if !ok {
		return fmt.Errorf("invalid target %q", args[0])
	}
	fmt.Printf("target:   %064x\n", target)
	fmt.Printf("compact:  %08x\n", consensus.BigToCompact(target))
	return nil
}
