package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"twinpane/internal/conflict"
	"twinpane/internal/operation"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type opFlags struct {
	collision string
	verbose   bool
	yes       bool
}

func (f *opFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.collision, "collision", "c", "", "what to do when the destination exists: ask, overwrite, skip or rename (default from config)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "print each entry as it is processed")
}

// NewCopyCmd creates the copy command
func NewCopyCmd() *cobra.Command {
	var flags opFlags
	cmd := &cobra.Command{
		Use:   "copy SOURCE... DEST_DIR",
		Short: "Copy files and directories into a directory",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := len(args) - 1
			return runOperation(cmd, operation.Copy{Sources: args[:n], DestDir: args[n]}, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// NewMoveCmd creates the move command
func NewMoveCmd() *cobra.Command {
	var flags opFlags
	cmd := &cobra.Command{
		Use:   "move SOURCE... DEST_DIR",
		Short: "Move files and directories into a directory",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := len(args) - 1
			return runOperation(cmd, operation.Move{Sources: args[:n], DestDir: args[n]}, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// NewDeleteCmd creates the delete command. Deletes from the command line
// are always permanent.
func NewDeleteCmd() *cobra.Command {
	var flags opFlags
	cmd := &cobra.Command{
		Use:   "delete TARGET...",
		Short: "Delete files and directories permanently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Operations.ConfirmDelete && !flags.yes {
				prompt := newPromptAsker(cmd.InOrStdin(), cmd.OutOrStdout())
				if !prompt.Confirm(fmt.Sprintf("Delete %d entries permanently?", len(args))) {
					fmt.Fprintln(cmd.OutOrStdout(), warningText("Nothing deleted"))
					return nil
				}
			}
			return runOperation(cmd, operation.Delete{Targets: args}, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// NewMkdirCmd creates the mkdir command
func NewMkdirCmd() *cobra.Command {
	var flags opFlags
	cmd := &cobra.Command{
		Use:   "mkdir PATH",
		Short: "Create a directory inside an existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Clean(args[0])
			return runOperation(cmd, operation.MakeDir{Parent: filepath.Dir(path), Name: filepath.Base(path)}, flags)
		},
	}
	return cmd
}

// NewRenameCmd creates the rename command
func NewRenameCmd() *cobra.Command {
	var flags opFlags
	cmd := &cobra.Command{
		Use:   "rename PATH NEW_NAME",
		Short: "Rename an entry within its directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, operation.Rename{Source: args[0], NewName: args[1]}, flags)
		},
	}
	return cmd
}

// runOperation executes op in the foreground and prints what happened.
// Nothing is kept for undo: there is no session to undo in.
func runOperation(cmd *cobra.Command, op operation.Operation, flags opFlags) error {
	opCfg := *cfg
	if flags.collision != "" {
		opCfg.Operations.Collision = flags.collision
	}
	opCfg.Operations.RecoverableDelete = false
	opCfg.Operations.BackupOverwritten = false

	out := cmd.OutOrStdout()
	exec, err := operation.CurrentExecutorFactory(&opCfg, newPromptAsker(cmd.InOrStdin(), out))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var progress operation.ProgressFunc
	if flags.verbose {
		last := ""
		progress = func(p operation.Progress) {
			if p.CurrentPath != "" && p.CurrentPath != last {
				last = p.CurrentPath
				fmt.Fprintln(out, infoText(p.CurrentPath))
			}
		}
	}

	res := exec.Run(ctx, op, progress)
	printResult(cmd, res)
	if !res.OK() {
		return fmt.Errorf("%s did not complete", op.Kind())
	}
	return nil
}

func printResult(cmd *cobra.Command, res operation.Result) {
	out := cmd.OutOrStdout()
	for _, path := range res.Skipped {
		fmt.Fprintf(out, "%s %s\n", warningText("skipped"), path)
	}
	for _, f := range res.Failed {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %v\n", errorText("failed"), f.Path, f.Err)
	}

	summary := res.Summary()
	switch {
	case res.Fatal != nil || len(res.Failed) > 0:
		fmt.Fprintln(out, errorText(summary))
	case res.Cancelled:
		fmt.Fprintln(out, warningText(summary))
	default:
		if res.Bytes > 0 {
			summary = strings.Replace(summary, humanize.Bytes(uint64(res.Bytes)), emphasisText(humanize.Bytes(uint64(res.Bytes))), 1)
		}
		fmt.Fprintln(out, successText(summary))
	}
}

var _ conflict.Asker = (*promptAsker)(nil)
