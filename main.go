package main

import (
	"github.com/gekaluck/couple-moments-sub000/core/logger"
	"github.com/gekaluck/couple-moments-sub000/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
	}
}
