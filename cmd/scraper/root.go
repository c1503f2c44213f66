package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/spf13/cobra"
	"github.com/vitor-labes/category-scraper/internal/config"
	"github.com/vitor-labes/category-scraper/internal/scraper"
	"github.com/vitor-labes/category-scraper/internal/sink"
)

type app struct {
	cfg     *config.Config
	stdout  io.Writer
	scraper scraper.Scraper
	connect func(ctx context.Context, cfg *config.Config, kind sink.Kind) (sink.Sink, func() error, error)
}

func newRootCmd(a *app) *cobra.Command {
	var (
		asJSON   bool
		sinkName string
		headless bool
		poll     bool
	)

	cmd := &cobra.Command{
		Use:   "scraper <url>",
		Short: "Coleta os primeiros produtos de uma categoria e armazena ou imprime em JSON",
		Long: fmt.Sprintf(`Abre a página da categoria num navegador, rola até %d vezes para carregar
produtos sob demanda e guarda os primeiros %d produtos válidos e sem repetição.`,
			a.cfg.MaxScrollAttempts, a.cfg.TargetCount),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseTarget(args[0])
			if err != nil {
				return err
			}

			kind := sink.KindJSON
			if !asJSON {
				if kind, err = sink.ParseKind(sinkName); err != nil {
					return err
				}
			}

			if cmd.Flags().Changed("headless") {
				a.cfg.Headless = headless
			}
			if cmd.Flags().Changed("poll") {
				a.cfg.PollForIncrease = poll
			}

			return a.run(cmd.Context(), target, kind)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "imprime os produtos em JSON em vez de armazenar")
	cmd.Flags().StringVar(&sinkName, "sink", string(sink.KindStore), "destino dos produtos: store, queue ou csv")
	cmd.Flags().BoolVar(&headless, "headless", true, "executa o navegador sem janela")
	cmd.Flags().BoolVar(&poll, "poll", false, "aguarda novos cards em vez de uma pausa fixa após cada rolagem")

	return cmd
}

func (a *app) run(ctx context.Context, target string, kind sink.Kind) error {
	slog.Info("iniciando scraper",
		"url", target,
		"sink", kind,
		"target_count", a.cfg.TargetCount,
		"max_scroll_attempts", a.cfg.MaxScrollAttempts,
	)

	products, err := a.scraper.Scrape(ctx, target)
	if err != nil {
		return err
	}

	slog.Info("scraping concluído", "total_products_found", len(products))

	if kind == sink.KindJSON {
		return sink.NewJSON(a.stdout).Emit(ctx, products)
	}

	out, closeSink, err := a.connect(ctx, a.cfg, kind)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSink(); err != nil {
			slog.Warn("erro ao fechar destino", "sink", kind, "error", err)
		}
	}()

	return out.Emit(ctx, products)
}

func parseTarget(raw string) (string, error) {
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("url inválida %q: use http ou https", raw)
	}
	return u.String(), nil
}
