package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// @title Task Tracker API
// @version 1.0
// @description Аутентификация, сессии и пользователи трекера задач

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.WithError(err).Error("команда завершилась с ошибкой")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "task-tracker",
		Short:         "REST API для управления задачами",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand(), newKeygenCommand())
	return root
}
