// Command mima assembles and runs programs for the MiMA microcycle
// simulator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mima/asm"
	"mima/mima"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mima",
		Short: "mima — assemble and run programs for the MiMA microcycle simulator",
	}

	rootCmd.AddCommand(asmCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(debugCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func asmCmd() *cobra.Command {
	var repr bool

	cmd := &cobra.Command{
		Use:   "asm <file>",
		Short: "Assemble a source file and print its object code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			code, diags, program, err := asm.AssembleWithRepr(string(src))
			if err != nil {
				return err
			}
			for _, d := range diags {
				fmt.Fprintln(os.Stderr, d)
			}
			if repr {
				fmt.Print(program)
				return nil
			}
			for i, w := range code.RawCode {
				fmt.Printf("%04d: %s\n", i, w)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&repr, "repr", false, "print the normalized source listing instead of object code")
	return cmd
}

func runCmd() *cobra.Command {
	var maxMicrocycles int

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Assemble and run a program to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			m := mima.New()
			diags, err := m.Load(string(src))
			for _, d := range diags {
				fmt.Fprintln(os.Stderr, d)
			}
			if err != nil {
				return err
			}

			m.Run(maxMicrocycles)
			if m.IsRunning() {
				return fmt.Errorf("program did not halt within %d microcycles", maxMicrocycles)
			}

			fmt.Printf("ACC: %s\n", m.Arithmetic.ACC)
			fmt.Printf("IAR: %s\n", m.Control.IAR)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxMicrocycles, "max-microcycles", 1_000_000, "halt the runner after this many microcycles if the program never halts itself")
	return cmd
}

func debugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug <file>",
		Short: "Step through a program microcycle by microcycle in a terminal UI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return Debug(string(src))
		},
	}
}
