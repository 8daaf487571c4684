package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/ByLCY/quire/book"
	"github.com/ByLCY/quire/config"
	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/library"
	"github.com/ByLCY/quire/logger"
	canvasmeasure "github.com/ByLCY/quire/measure/canvas"
	"github.com/ByLCY/quire/reader"
	"github.com/ByLCY/quire/server"
	"github.com/ByLCY/quire/storage"
	"github.com/ByLCY/quire/tracer"
)

type options struct {
	input      string
	configPath string
	debugPath  string
	proofPath  string
	locations  string
	offset     string
	page       int
	resume     bool
	serve      bool
	width      string
	height     string
	fontSize   string
}

func main() {
	var o options
	flag.StringVar(&o.input, "in", "", "书籍文件路径（.book 或 .epub）")
	flag.StringVar(&o.configPath, "config", "", "配置文件路径（YAML）")
	flag.StringVar(&o.debugPath, "debug", "", "布局调试 JSON 输出路径")
	flag.StringVar(&o.proofPath, "pdf", "", "分页校样 PDF 输出路径")
	flag.StringVar(&o.locations, "locations", "", "location 索引 JSON 输出路径")
	flag.StringVar(&o.offset, "offset", "", "查询并保存该滚动偏移所在页")
	flag.IntVar(&o.page, "page", 0, "按页码查询")
	flag.BoolVar(&o.resume, "resume", false, "恢复上次保存的阅读位置")
	flag.BoolVar(&o.serve, "serve", false, "启动 HTTP 服务")
	flag.StringVar(&o.width, "width", "", "屏幕宽度，如 375px、100mm")
	flag.StringVar(&o.height, "height", "", "屏幕高度，如 812px")
	flag.StringVar(&o.fontSize, "font-size", "", "字号，如 16px、12pt")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o); err != nil {
		logger.Fatal(ctx, "quire failed", err)
	}
}

func run(ctx context.Context, o options) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if err := applyOverrides(&cfg.Layout.Config, o); err != nil {
		return err
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error(ctx, "tracer shutdown failed", err)
		}
	}()

	kv, closeKV, err := openKV(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeKV()
	store := storage.NewBestEffort(storage.NewStore(kv))

	fontDir := ""
	if o.configPath != "" {
		fontDir = filepath.Dir(o.configPath)
	}
	m := canvasmeasure.New(canvasmeasure.Options{
		Font:              cfg.Measure.Font,
		BaseDir:           fontDir,
		HeadingScale:      cfg.Measure.HeadingScale,
		HorizontalPadding: cfg.Measure.HorizontalPadding,
	})
	opts := layout.BuildOptions{Measurer: m, Locator: cfg.Layout.LocatorMode()}

	if o.serve {
		return serve(ctx, cfg, opts, store)
	}
	if o.input == "" {
		return errors.New("缺少 -in 参数（或使用 -serve 启动服务）")
	}
	return readOne(ctx, cfg, m, opts, store, o)
}

// applyOverrides 把命令行上的尺寸（带单位）写入默认排版配置。
func applyOverrides(c *layout.Config, o options) error {
	set := func(name, raw string, dst *float64) error {
		if raw == "" {
			return nil
		}
		l, ok := layout.ParseLength(raw)
		if !ok {
			return fmt.Errorf("无法解析 -%s=%q", name, raw)
		}
		*dst = l.ToPX()
		return nil
	}
	if err := set("width", o.width, &c.ScreenWidth); err != nil {
		return err
	}
	if err := set("height", o.height, &c.ScreenHeight); err != nil {
		return err
	}
	if err := set("font-size", o.fontSize, &c.FontSize); err != nil {
		return err
	}
	return c.Validate()
}

func openKV(ctx context.Context, cfg config.StorageConfig) (storage.KV, func(), error) {
	switch cfg.Driver {
	case "", "memory":
		return storage.NewMemory(), func() {}, nil
	case "redis":
		r, err := storage.NewRedis(cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info(ctx, "using redis storage", "addr", cfg.Redis.Addr())
		return r, func() { _ = r.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func serve(ctx context.Context, cfg *config.Config, opts layout.BuildOptions, store *storage.BestEffort) error {
	reg, err := library.Load(ctx, cfg.Library.Dir)
	if err != nil {
		return err
	}
	r := reader.New(reg, opts, store)
	return server.New(cfg, server.Deps{Reader: r, Store: store}).Run(ctx)
}

// readOne 打开单本书、排版，并按参数输出查询结果。
func readOne(ctx context.Context, cfg *config.Config, m *canvasmeasure.Measurer, opts layout.BuildOptions, store *storage.BestEffort, o options) error {
	b, err := library.LoadBook(o.input)
	if err != nil {
		return err
	}
	s := reader.NewSession(b, opts, store)
	l, err := s.Relayout(ctx, cfg.Layout.Config)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	fmt.Printf("%s: %d 页，总高度 %.0fpx，每页 %.0fpx\n", b.Title, l.PageCount(), l.TotalHeight, l.ContentHeight)

	if o.debugPath != "" {
		if err := writeOutput(o.debugPath, func(p string) error { return layout.WriteDebugJSON(l, p) }); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}
	if o.proofPath != "" {
		err := writeOutput(o.proofPath, func(p string) error {
			f, err := os.Create(p)
			if err != nil {
				return err
			}
			if err := m.RenderProof(ctx, f, b, l, cfg.Layout.Config); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		})
		if err != nil {
			return fmt.Errorf("输出校样 PDF 失败: %w", err)
		}
	}
	if o.locations != "" {
		idx := book.Locations(b, book.DefaultCharsPerLocation)
		err := writeOutput(o.locations, func(p string) error {
			data, err := json.MarshalIndent(idx, "", "  ")
			if err != nil {
				return err
			}
			return os.WriteFile(p, data, 0o644)
		})
		if err != nil {
			return fmt.Errorf("输出 location 索引失败: %w", err)
		}
	}

	if o.page > 0 {
		p, ok := s.PageByNumber(o.page)
		if !ok {
			return fmt.Errorf("第 %d 页不存在（共 %d 页）", o.page, l.PageCount())
		}
		printPage(p)
	}
	if o.offset != "" {
		v, err := strconv.ParseFloat(o.offset, 64)
		if err != nil {
			return fmt.Errorf("无法解析 -offset=%q: %w", o.offset, err)
		}
		if p, ok := s.SavePosition(ctx, v); ok {
			printPage(p)
		}
	}
	if o.resume {
		p, offset, ok := s.Resume(ctx)
		if !ok {
			fmt.Println("没有保存的阅读位置")
			return nil
		}
		fmt.Printf("恢复到偏移 %.0f\n", offset)
		printPage(p)
	}
	return nil
}

func printPage(p layout.Page) {
	fmt.Printf("第 %d 页 @%.0f  %s  单元 %d-%d\n",
		p.PageNumber, p.ScrollOffset, p.ChapterTitle, p.StartParagraphIdx, p.EndParagraphIdx)
}

func writeOutput(path string, write func(string) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return write(path)
}
