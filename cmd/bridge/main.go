package main

import (
	"io/ioutil"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cloudkucooland/pidoor"
	"github.com/cloudkucooland/pidoor/accessory"
	"github.com/cloudkucooland/pidoor/config"
	"github.com/cloudkucooland/pidoor/platform"

	"github.com/brutella/hc/log"
	"github.com/urfave/cli/v2"
)

func main() {
	var dir, file string
	var debug bool

	app := cli.App{
		Name:  "pidoor",
		Usage: "HomeKit bridge for relay-driven door locks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Value:       "config",
				Usage:       "configuration directory",
				Destination: &dir,
			},
			&cli.StringFlag{
				Name:        "config",
				Value:       "server.json",
				Usage:       "configuration file",
				Destination: &file,
			},
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "enable debug logging",
				Destination: &debug,
			},
		},
		Action: func(c *cli.Context) error {
			if debug {
				log.Debug.Enable()
			}

			conf, err := config.Load(dir, file)
			if err != nil {
				return err
			}

			// spin up platforms
			pidoor.BootstrapPlatforms(conf)

			// load accessory configs
			files, err := ioutil.ReadDir(conf.AccessoryDir())
			if err != nil {
				return err
			}
			for _, f := range files {
				if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
					continue
				}
				acc, err := accessory.Load(filepath.Join(conf.AccessoryDir(), f.Name()))
				if err != nil {
					log.Info.Println(err.Error())
					continue
				}
				if err := pidoor.AddAccessory(acc); err != nil {
					log.Info.Println(err.Error())
				}
			}

			// HC can only be started once all accessories are known
			if err := pidoor.StartHC(conf); err != nil {
				return err
			}

			// run all the background processes
			platform.Background()

			// wait for signal to shut down
			sigch := make(chan os.Signal, 3)
			signal.Notify(sigch, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGHUP, os.Interrupt)

			sig := <-sigch

			log.Info.Printf("shutdown requested by signal: %s", sig)
			platform.ShutdownAllPlatforms()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Info.Panic(err)
	}
}
