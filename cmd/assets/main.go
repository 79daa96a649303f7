// assets — загрузка медиа сайта в CDN и работа с манифестом.
//
// Использование:
//
//	./assets upload              # батчи, пропуск уже загруженных
//	./assets retry               # догрузить недостающие по одному, multipart
//	./assets extra               # логотипы и прочие файлы из extra_files
//	./assets manifest merge      # remote манифест + локальные файлы
//	./assets manifest show       # что лежит в манифесте
//	./assets index               # собрать индекс портфолио
//	./assets journal             # последние неудачные загрузки
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ilkoid/pixelbros-assets/pkg/config"
	"github.com/ilkoid/pixelbros-assets/pkg/utils"
)

const appName = "assets"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app — общее состояние подкоманд.
type app struct {
	configPath string
	debug      bool
	cfg        *config.AppConfig
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Upload site media to the CDN and maintain the asset manifest",
		Long: `assets walks the site's asset folders, uploads media to the object
storage behind the CDN and keeps a flat JSON manifest (key -> URL)
that the portfolio index is built from.`,
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			utils.Close()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to config.yaml")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Write debug entries to the log")

	cmd.AddCommand(
		uploadCmd(a),
		retryCmd(a),
		extraCmd(a),
		manifestCmd(a),
		indexCmd(a),
		journalCmd(a),
	)
	return cmd
}

// load читает конфиг и поднимает лог. withStorage требует секцию s3.
func (a *app) load(withStorage bool) error {
	path := config.FindConfigPath(a.configPath)

	var err error
	if withStorage {
		a.cfg, err = config.Load(path)
	} else {
		a.cfg, err = config.LoadLocal(path)
	}
	if err != nil {
		return err
	}

	if err := utils.InitLogger(a.cfg.App.LogDir, a.cfg.App.LogPrefix); err != nil {
		fmt.Fprintf(os.Stderr, "Logger Error: %v\n", err)
	}
	utils.SetDebug(a.debug || a.cfg.App.Debug)
	utils.Info("Config loaded", "path", path)
	return nil
}
