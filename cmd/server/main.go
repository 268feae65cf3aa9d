// Package main is the entry point for the drumscript API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/james-see/drumscript/pkg/api"
	"github.com/james-see/drumscript/pkg/logging"
)

func main() {
	port := flag.Int("port", 8080, "Server port")
	level := flag.String("log-level", "info", "Log level")
	flag.Parse()

	log := logging.GetProjectLogger()
	if err := logging.SetLevel(*level); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(2)
	}

	log.WithField("port", *port).Info("Starting drumscript API server")
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", *port)

	if err := api.StartServer(*port); err != nil {
		log.WithError(err).Error("Server error")
		os.Exit(1)
	}
}
