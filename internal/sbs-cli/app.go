package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kart-io/sbs-x/internal/explorer"
	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/pkg/infra/app"
)

const (
	appName        = "sbs"
	appDescription = `SBS question corner client

Browse and search the SBS dataset served by sbs-api.

  sbs volumes                       list every volume
  sbs volume 107 [--tags] [--json]  print a volume or its annotations
  sbs search luffy -t character     search, fetching matched volumes in batches of 3
  sbs shell                         interactive search with debounced input`
)

// NewApp creates the sbs client application.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithShortDescription("SBS question corner client"),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithCommands(
			newVolumesCommand(opts),
			newVolumeCommand(opts),
			newTagsCommand(opts),
			newCharactersCommand(opts),
			newSearchCommand(opts),
			newShellCommand(opts),
		),
	)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// setup installs the logger and returns an API client.
func setup(opts *Options) (*explorer.Client, error) {
	if err := opts.Log.Init(appName, app.GetVersion()); err != nil {
		return nil, err
	}
	return opts.Client.NewClient(), nil
}

func newVolumesCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "volumes",
		Short: "List every volume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := setup(opts)
			if err != nil {
				return err
			}
			list, err := client.Volumes(cmd.Context())
			if err != nil {
				return err
			}
			NewPrinter(cmd.OutOrStdout()).Volumes(list)
			return nil
		},
	}
}

func newVolumeCommand(opts *Options) *cobra.Command {
	var tags, raw bool
	cmd := &cobra.Command{
		Use:   "volume [number]",
		Short: "Print a volume",
		Long:  "Print a volume, the configured current volume when no number is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := opts.Client.Volume
			if len(args) == 1 {
				v, err := parseVolume(args[0])
				if err != nil {
					return err
				}
				n = v
			}

			client, err := setup(opts)
			if err != nil {
				return err
			}
			p := NewPrinter(cmd.OutOrStdout())

			if tags {
				t, err := client.VolumeTags(cmd.Context(), n)
				if errors.Is(err, explorer.ErrNotFound) {
					p.Empty(fmt.Sprintf("Volume %d has no annotations.", n))
					return nil
				}
				if err != nil {
					return err
				}
				if raw {
					return p.JSON(t)
				}
				p.Tags(t)
				return nil
			}

			v, err := client.Volume(cmd.Context(), n)
			if errors.Is(err, explorer.ErrNotFound) {
				p.Empty(fmt.Sprintf("Volume %d not found.", n))
				return nil
			}
			if err != nil {
				return err
			}
			if raw {
				return p.JSON(v)
			}
			p.Volume(v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&tags, "tags", false, "Print the volume annotations instead of its content.")
	cmd.Flags().BoolVar(&raw, "json", false, "Print the document as returned by the API.")
	return cmd
}

func newTagsCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List every tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := setup(opts)
			if err != nil {
				return err
			}
			tags, err := client.Tags(cmd.Context())
			if err != nil {
				return err
			}
			NewPrinter(cmd.OutOrStdout()).List(tags)
			return nil
		},
	}
}

func newCharactersCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "characters",
		Short: "List every tagged character",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := setup(opts)
			if err != nil {
				return err
			}
			chars, err := client.Characters(cmd.Context())
			if err != nil {
				return err
			}
			NewPrinter(cmd.OutOrStdout()).List(chars)
			return nil
		},
	}
}

func newSearchCommand(opts *Options) *cobra.Command {
	var (
		typ    string
		all    bool
		filter int
	)
	cmd := &cobra.Command{
		Use:   "search [term...]",
		Short: "Search questions, characters or tags",
		Long: `Search the dataset. The first 3 matched volumes are fetched and printed;
--all keeps loading batches until every matched volume is printed. An empty
term prints the current volume.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			searchType, err := model.ParseSearchType(typ)
			if err != nil {
				return err
			}
			client, err := setup(opts)
			if err != nil {
				return err
			}

			s, err := explorer.NewSession(client, explorer.WithCurrentVolume(opts.Client.Volume))
			if err != nil {
				return err
			}
			defer s.Close()

			return runSearch(cmd.Context(), s, NewPrinter(cmd.OutOrStdout()), strings.Join(args, " "), searchType, all, filter)
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", string(model.SearchText), "Search type: text, character or tag.")
	cmd.Flags().BoolVar(&all, "all", false, "Load every matched volume.")
	cmd.Flags().IntVar(&filter, "filter-volume", 0, "Only print matches of this volume.")
	return cmd
}

func runSearch(ctx context.Context, s *explorer.Session, p *Printer, term string, typ model.SearchType, all bool, filter int) error {
	if strings.TrimSpace(term) == "" {
		if _, err := s.Volume(ctx, s.CurrentVolume()); err != nil {
			if errors.Is(err, explorer.ErrNotFound) {
				p.Empty(fmt.Sprintf("Volume %d not found.", s.CurrentVolume()))
				return nil
			}
			return err
		}
	}

	out, err := s.Search(ctx, term, typ)
	if err != nil {
		return err
	}
	for _, v := range out.Failed {
		p.Warn("Volume %d could not be loaded.", v)
	}

	if all {
		for s.HasMore() {
			if err := s.LoadMore(ctx); err != nil {
				p.Warn("Loading more volumes failed: %v", err)
				break
			}
		}
	}

	if active, _ := s.Term(); active != "" {
		p.Stats(s.Stats())
	}
	if filter > 0 {
		s.SetVolumeFilter(filter)
	}
	p.Groups(s.Groups())
	if s.HasMore() {
		p.More("More matched volumes remain, run again with --all.")
	}
	return nil
}

func parseVolume(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("volume must be a positive integer, got %q", s)
	}
	return n, nil
}
