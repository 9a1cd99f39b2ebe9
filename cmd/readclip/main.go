package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"voicechat/clipboard"
	"voicechat/config"
	"voicechat/log"
	"voicechat/speech"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "Config file path (default: user config dir)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("readclip %s\n", version)
		return
	}

	rate := speech.DefaultRate
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	} else {
		rate = cfg.Rate
	}

	if logPath, err := log.ResolveDir(*logPathFlag); err == nil {
		log.SetDir(logPath)
		if err := log.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		}
	}
	defer log.Close()

	readAloud(context.Background(), readClipboard, speech.NewSystem(rate), os.Stdout)
}

func readClipboard() (string, error) {
	if clipboard.Unsupported {
		return "", errors.New("no clipboard utility found (install xclip, xsel or wl-clipboard)")
	}
	return clipboard.Read()
}
