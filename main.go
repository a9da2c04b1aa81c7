package main

import (
	"runtime"

	"git.backbone/corpix/greeter/cli"
)

// @title greeter
// @version 1.0
// @description Payload fetch, echo-decode and greeting service.
// @BasePath /

func init() { runtime.GOMAXPROCS(runtime.NumCPU()) }
func main() { cli.Run() }
