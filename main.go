package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lchau1017/KaraokeLyrics-sub001/binding"
	"github.com/lchau1017/KaraokeLyrics-sub001/config"
	"github.com/lchau1017/KaraokeLyrics-sub001/dsl"
	"github.com/lchau1017/KaraokeLyrics-sub001/frame"
	"github.com/lchau1017/KaraokeLyrics-sub001/layout"
	"github.com/lchau1017/KaraokeLyrics-sub001/lyrics"
	canvasmeasure "github.com/lchau1017/KaraokeLyrics-sub001/measure/canvas"
	cellmeasure "github.com/lchau1017/KaraokeLyrics-sub001/measure/cell"
	"github.com/lchau1017/KaraokeLyrics-sub001/timing"
)

type globalFlags struct {
	input      string
	configPath string
	data       string
	measure    string
	font       string
	weight     string
	width      float64
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:          "karaoke",
		Short:        "逐字歌词同步、分词与布局引擎",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.input, "in", "examples/demo.lyrics", "歌词脚本（.lyrics）或歌曲 JSON 路径")
	pf.StringVar(&g.configPath, "config", "", "YAML 配置文件路径")
	pf.StringVar(&g.data, "data", "", "绑定到歌词脚本的 JSON 数据")
	pf.StringVar(&g.measure, "measure", "canvas", "文本测量后端：canvas 或 cell")
	pf.StringVar(&g.font, "font", "", "覆盖配置中的字体（embed:<name> 或字体文件路径）")
	pf.StringVar(&g.weight, "weight", "", "覆盖配置中的字重，如 bold、italic、bold italic")
	pf.Float64Var(&g.width, "width", 800, "画布宽度（px）")
	pf.StringVar(&g.logLevel, "log-level", "", "覆盖配置中的日志级别")

	root.AddCommand(newFrameCmd(g), newLayoutCmd(g), newPlayCmd(g), newFmtCmd(g))
	return root
}

// session 汇总一次命令执行所需的配置、日志与引擎。
type session struct {
	cfg    config.Config
	log    *log.Logger
	song   lyrics.Song
	engine *frame.Engine
}

func (g *globalFlags) open() (*session, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.font != "" {
		cfg.Layout.Font = g.font
	}
	if g.weight != "" {
		cfg.Layout.FontWeight = g.weight
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "karaoke", Level: cfg.Level(), ReportTimestamp: true})

	data, err := binding.ParseData(g.data)
	if err != nil {
		return nil, err
	}
	song, err := loadSong(g.input, data)
	if err != nil {
		return nil, err
	}

	var m layout.Measurer
	switch g.measure {
	case "canvas":
		m = canvasmeasure.New(filepath.Dir(g.input), logger)
	case "cell":
		m = cellmeasure.New(1, 1)
	default:
		return nil, fmt.Errorf("未知的测量后端 %q", g.measure)
	}
	engine, err := frame.New(m, cfg.FrameOptions(), logger)
	if err != nil {
		return nil, err
	}
	engine.Load(song)
	return &session{cfg: cfg, log: logger, song: song, engine: engine}, nil
}

// loadSong 读取歌词脚本；.json 文件按 lyrics.Song 解码。
func loadSong(path string, data any) (lyrics.Song, error) {
	file, err := os.Open(path)
	if err != nil {
		return lyrics.Song{}, fmt.Errorf("无法打开歌词文件 %s: %w", path, err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var song lyrics.Song
		if err := json.NewDecoder(file).Decode(&song); err != nil {
			return lyrics.Song{}, fmt.Errorf("解析歌曲 JSON 失败: %w", err)
		}
		return lyrics.NewSong(song.ID, song.Title, song.Lines, song.Metadata), nil
	}
	song, err := dsl.Load(file, data)
	if err != nil {
		return lyrics.Song{}, fmt.Errorf("解析歌词脚本失败: %w", err)
	}
	return song, nil
}

func newFrameCmd(g *globalFlags) *cobra.Command {
	var at int64
	var out string
	cmd := &cobra.Command{
		Use:   "frame",
		Short: "计算某一时刻的帧并输出 JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.open()
			if err != nil {
				return err
			}
			f, err := s.engine.Frame(at, g.width)
			if err != nil {
				return fmt.Errorf("计算帧失败: %w", err)
			}
			return writeJSON(f, out)
		},
	}
	cmd.Flags().Int64Var(&at, "at", 0, "播放时间（毫秒）")
	cmd.Flags().StringVar(&out, "out", "", "输出路径，默认标准输出")
	return cmd
}

func newLayoutCmd(g *globalFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "输出全部歌词行的静态布局（调试 JSON）",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.open()
			if err != nil {
				return err
			}
			layouts := make([]*layout.Layout, len(s.song.Lines))
			for i := range s.song.Lines {
				if layouts[i], err = s.engine.Layout(i, g.width); err != nil {
					return err
				}
			}
			return writeJSON(layouts, out)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "输出路径，默认标准输出")
	return cmd
}

func newPlayCmd(g *globalFlags) *cobra.Command {
	var (
		fps      int
		from, to int64
		realtime bool
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "按固定帧率模拟播放并记录行状态变化",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.open()
			if err != nil {
				return err
			}
			if to <= 0 {
				for _, l := range s.song.Lines {
					to = max(to, l.EndMs+s.cfg.Timing.RecentWindowMs)
				}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return play(ctx, s, g.width, fps, from, to, realtime)
		},
	}
	cmd.Flags().IntVar(&fps, "fps", 30, "模拟帧率")
	cmd.Flags().Int64Var(&from, "from", 0, "起始时间（毫秒）")
	cmd.Flags().Int64Var(&to, "to", 0, "结束时间（毫秒），默认到最后一行结束")
	cmd.Flags().BoolVar(&realtime, "realtime", false, "按真实时间节奏推进")
	return cmd
}

// play 在更新循环中逐帧计算，并通过 Publisher 交给日志协程读取最新帧。
func play(ctx context.Context, s *session, width float64, fps int, from, to int64, realtime bool) error {
	if fps <= 0 {
		fps = 30
	}
	step := int64(1000 / fps)
	var pub frame.Publisher
	ticks := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		last := map[int]timing.State{}
		for range ticks {
			f := pub.Latest()
			if f == nil {
				continue
			}
			for _, l := range f.Lines {
				if prev, ok := last[l.Index]; ok && prev == l.Timing.State {
					continue
				}
				last[l.Index] = l.Timing.State
				s.log.Info("line", "at", f.NowMs, "index", l.Index, "state", l.Timing.State, "opacity", l.Visual.Opacity)
			}
		}
	}()

	var ticker *time.Ticker
	if realtime {
		ticker = time.NewTicker(time.Second / time.Duration(fps))
		defer ticker.Stop()
	}
	var err error
loop:
	for now := from; now <= to; now += step {
		f, ferr := s.engine.Frame(now, width)
		if ferr != nil {
			err = fmt.Errorf("计算帧失败: %w", ferr)
			break
		}
		pub.Publish(f)
		select {
		case ticks <- struct{}{}:
		default:
		}
		if ticker != nil {
			select {
			case <-ctx.Done():
				break loop
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			break loop
		}
	}
	close(ticks)
	<-done
	st := s.engine.Stats()
	s.log.Debug("play finished", "layouts", st.Layouts, "hits", st.CacheHits, "misses", st.CacheMisses, "pins", st.Pins)
	return err
}

func newFmtCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fmt",
		Short: "以规范格式重新输出歌词脚本",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := binding.ParseData(g.data)
			if err != nil {
				return err
			}
			song, err := loadSong(g.input, data)
			if err != nil {
				return err
			}
			return dsl.Format(cmd.OutOrStdout(), song)
		},
	}
}

func writeJSON(v any, path string) error {
	if path == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	if err := layout.WriteDebugJSON(v, path); err != nil {
		return fmt.Errorf("输出 JSON 失败: %w", err)
	}
	return nil
}
