// Package main runs the web gateway.
package main

import (
	"flag"

	"kyri56xcaesar/pms-workspace/internal/front"
)

func main() {
	confPath := flag.String("config", "configs/front.env", "path to the .env configuration file")
	flag.Parse()

	front.InitAndServe(*confPath)
}
