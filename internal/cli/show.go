package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pankajredekar/lemonmenu/internal/presenter"
	"github.com/pankajredekar/lemonmenu/internal/utils"
	"github.com/spf13/cobra"
)

var (
	showSortByName   bool
	showSearchPhrase string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the menu",
	Long:  "Renders the cached menu. If the cache is empty the menu is downloaded first; on failure the list stays empty.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			utils.PrintError("%v", err)
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		state := presenter.ViewState{
			SortByName:   showSortByName,
			SearchPhrase: showSearchPhrase,
		}
		if err := showMenu(ctx, a, state, cmd.OutOrStdout()); err != nil {
			utils.PrintError("%v", err)
			return err
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showSortByName, "sort", false, "Order the menu by name")
	showCmd.Flags().StringVar(&showSearchPhrase, "search", "", "Only show items whose title contains this phrase (case-sensitive)")
	rootCmd.AddCommand(showCmd)
}

// showMenu subscribes to the cache, runs a background sync and writes the
// derived list once the sync task has finished. A failed sync leaves the
// list empty; the task logs the failure.
func showMenu(ctx context.Context, a *app, state presenter.ViewState, w io.Writer) error {
	p := presenter.New()
	p.SetState(state)

	subCtx, unsubscribe := context.WithCancel(ctx)
	defer unsubscribe()
	snapshots, err := a.store.ObserveAll(subCtx)
	if err != nil {
		return fmt.Errorf("failed to read menu cache: %w", err)
	}
	p.Attach(snapshots)

	task := a.coordinator.Start(ctx)
	<-task.Done()

	unsubscribe()
	<-p.Detached()

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 40))
	fmt.Fprintln(w, "Little Lemon Menu")
	fmt.Fprintln(w, strings.Repeat("=", 40))
	utils.PrintMenu(w, p.Current())
	fmt.Fprintln(w)
	return nil
}
