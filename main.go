package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/rs/zerolog/log"

	"co2-predictor/config"
)

func main() {
	// 1. 读取配置 (命令行参数 > 环境变量 > 默认值)
	cfg, p, err := config.Load(os.Args[1:])
	switch {
	case errors.Is(err, arg.ErrHelp):
		p.WriteHelp(os.Stdout)
		os.Exit(0)
	case errors.Is(err, arg.ErrVersion):
		fmt.Println(cfg.Version())
		os.Exit(0)
	case err != nil && p != nil:
		p.Fail(err.Error())
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// 2. 初始化日志
	setLogger(cfg.LogLevel, cfg.LogFormat)

	// 3. 执行子命令, 默认启动服务
	switch {
	case cfg.Init != nil:
		err = runInit(cfg)
	case cfg.Evaluate != nil:
		err = runEvaluate(cfg)
	default:
		err = runServe(cfg)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("co2-predictor exited")
	}
}
