// ShopEval 维修厂选厂评估
// 批处理入口：对一辆车评估候选维修厂，输出 JSON 结果

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/shopeval/shopeval/internal/cache"
	"github.com/shopeval/shopeval/internal/config"
	"github.com/shopeval/shopeval/internal/database"
	"github.com/shopeval/shopeval/internal/metrics"
	"github.com/shopeval/shopeval/internal/repository"
	"github.com/shopeval/shopeval/pkg/eligibility"
	"github.com/shopeval/shopeval/pkg/estimator"
	"github.com/shopeval/shopeval/pkg/evaluation"
	"github.com/shopeval/shopeval/pkg/logger"
	"github.com/shopeval/shopeval/pkg/model"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type options struct {
	configPath  string
	inputPath   string
	carNumber   string
	shops       string
	overrides   string
	metricsPath string
	timeout     time.Duration
	version     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "配置文件路径（默认读取 CONFIG_PATH 或环境变量）")
	flag.StringVar(&opts.inputPath, "input", "", "JSON 输入文件，设置后不连接数据库")
	flag.StringVar(&opts.carNumber, "car", "", "车号")
	flag.StringVar(&opts.shops, "shops", "", "候选维修厂代码，逗号分隔（为空时评估全部启用的维修厂）")
	flag.StringVar(&opts.overrides, "overrides", "", `覆盖选项 JSON，例如 {"exterior_paint":true}`)
	flag.StringVar(&opts.metricsPath, "metrics-textfile", "", "指标文本文件输出路径（覆盖配置）")
	flag.DurationVar(&opts.timeout, "timeout", 0, "评估超时（覆盖配置）")
	flag.BoolVar(&opts.version, "version", false, "打印版本信息")
	flag.Parse()

	if opts.version {
		fmt.Printf("ShopEval v%s\n", Version)
		fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
		return
	}

	if opts.carNumber == "" {
		fmt.Fprintln(os.Stderr, "缺少 -car 参数")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(cfg.Log.LoggerConfig())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, os.Stdout); err != nil {
		logger.Error().Err(err).Str("car_number", opts.carNumber).Msg("评估失败")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, out io.Writer) error {
	overrides, err := parseOverrides(opts.overrides)
	if err != nil {
		return err
	}

	timeout := cfg.Evaluator.Timeout
	if opts.timeout > 0 {
		timeout = opts.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	batchID := uuid.NewString()
	ctx = logger.ContextWithBatchID(ctx, batchID)
	log := logger.WithContext(ctx)

	m := metrics.Default()

	var (
		configSource    evaluation.ConfigSource
		candidateSource evaluation.CandidateSource
		db              *database.DB
	)

	if opts.inputPath != "" {
		f, err := os.Open(opts.inputPath)
		if err != nil {
			return fmt.Errorf("打开输入文件失败: %w", err)
		}
		src, err := evaluation.LoadFixture(f)
		f.Close()
		if err != nil {
			return err
		}
		configSource, candidateSource = src, src
		log.Info().Str("input", opts.inputPath).Msg("使用文件输入")
	} else {
		db, err = database.New(ctx, &cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		store := repository.NewStore(db)
		configSource, candidateSource = store, store

		if cfg.Redis.Enabled {
			client, err := cache.NewClient(ctx, &cfg.Redis)
			if err != nil {
				log.Warn().Err(err).Msg("Redis不可用，直接读取数据库配置")
			} else {
				defer client.Close()
				configSource = cache.NewConfigCache(client, store, cfg.Redis.TTL, cache.WithRecorder(m))
			}
		}
	}

	snapshots := evaluation.NewSnapshotStore(configSource,
		evaluation.WithEvaluatorOptions(eligibility.WithRecorder(m)),
		evaluation.WithEstimatorOptions(
			estimator.WithDefaults(cfg.Estimator.Defaults()),
			estimator.WithRecorder(m),
		),
		evaluation.WithRefreshRecorder(m),
	)
	if err := snapshots.Refresh(ctx); err != nil {
		return err
	}

	svc := evaluation.NewService(snapshots, candidateSource,
		evaluation.WithWorkers(cfg.Evaluator.Workers),
		evaluation.WithRecorder(m),
	)

	result, err := svc.EvaluateCar(ctx, opts.carNumber, parseShopCodes(opts.shops), overrides)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("输出结果失败: %w", err)
	}

	if db != nil {
		stats := db.Stats()
		log.Debug().
			Int("open", stats.OpenConnections).
			Int("in_use", stats.InUse).
			Int64("wait_count", stats.WaitCount).
			Msg("数据库连接池")
	}

	metricsPath := cfg.Metrics.TextfilePath
	if opts.metricsPath != "" {
		metricsPath = opts.metricsPath
	}
	if cfg.Metrics.Enabled && metricsPath != "" {
		if err := m.WriteTextfile(metricsPath); err != nil {
			log.Warn().Err(err).Str("path", metricsPath).Msg("写入指标文件失败")
		}
	}

	return nil
}

// parseShopCodes 解析逗号分隔的维修厂代码
func parseShopCodes(s string) []string {
	var codes []string
	for _, part := range strings.Split(s, ",") {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

func parseOverrides(s string) (model.Overrides, error) {
	var o model.Overrides
	if strings.TrimSpace(s) == "" {
		return o, nil
	}
	if err := json.Unmarshal([]byte(s), &o); err != nil {
		return o, fmt.Errorf("解析覆盖选项失败: %w", err)
	}
	return o, nil
}
