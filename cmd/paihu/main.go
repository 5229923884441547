// PaiHu 患者分配引擎
// 主程序入口：读取JSON请求文件，执行一次分配优化，输出报告JSON
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/paiban/paihu/internal/config"
	"github.com/paiban/paihu/internal/rules"
	"github.com/paiban/paihu/pkg/assigner"
	"github.com/paiban/paihu/pkg/errors"
	"github.com/paiban/paihu/pkg/logger"
	"github.com/paiban/paihu/pkg/model"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// request 分配请求
type request struct {
	Nurses   []*model.Nurse   `json:"nurses"`
	Patients []*model.Patient `json:"patients"`
}

func main() {
	var (
		inputPath   = flag.String("input", "-", "请求JSON文件路径，- 表示标准输入")
		configPath  = flag.String("config", "", "YAML配置文件路径（可选）")
		deadlineSec = flag.Float64("deadline", -1, "时间预算（秒），覆盖配置文件取值")
		showRules   = flag.Bool("rules", false, "输出规则目录后退出")
		showVersion = flag.Bool("version", false, "输出版本信息后退出")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("PaiHu 患者分配引擎 v%s\n", Version)
		fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
		return
	}

	if *showRules {
		writeJSON(os.Stdout, rules.LibraryResponse{Library: rules.GetLibrary()})
		return
	}

	// 加载配置
	var cfg *config.Config
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
			os.Exit(2)
		}
		cfg = loaded
	} else {
		cfg = config.Load()
	}

	// 初始化日志
	logger.Init(cfg.Log)

	if *deadlineSec >= 0 {
		cfg.Assigner.DeadlineSeconds = *deadlineSec
	}

	req, err := readRequest(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取请求失败: %v\n", err)
		os.Exit(2)
	}

	engine := assigner.New(cfg.Assigner.Options())
	report, err := engine.Optimize(context.Background(), req.Nurses, req.Patients)
	if err != nil {
		logger.WithError(err).Msg("分配失败")
		writeJSON(os.Stderr, err)
		switch errors.GetCode(err) {
		case errors.CodeValidationFail, errors.CodeInvalidInput, errors.CodeInfeasibleInput:
			os.Exit(2)
		default:
			os.Exit(1)
		}
	}

	writeJSON(os.Stdout, report)
}

// readRequest 读取并解析请求文件
func readRequest(path string) (*request, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var req request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "请求JSON解析失败")
	}
	return &req, nil
}

// writeJSON 输出缩进JSON
func writeJSON(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "输出失败: %v\n", err)
	}
}
