// Copyright 2026 The OpenRigTools Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// rigclone-tool downloads and uploads codeplug images over a radio's
// clone-mode serial protocol.
//
// Usage:
//
//	rigclone-tool -list
//	rigclone-tool -models
//	rigclone-tool -device /dev/ttyUSB0 -model QX588UV -download backup.img
//	rigclone-tool -device /dev/ttyUSB0 -model QX588UV -upload backup.img
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	rigclone "github.com/OpenRigTools/go-rigclone"
	"github.com/OpenRigTools/go-rigclone/detection"
	"github.com/OpenRigTools/go-rigclone/transport/serial"
)

// Package-level flag variables
var (
	flagDevice   string
	flagModel    string
	flagDownload string
	flagUpload   string
	flagConfig   string
	flagProfiles string
	flagList     bool
	flagModels   bool
	flagDebug    bool
)

func init() {
	flag.StringVar(&flagDevice, "device", "", "Serial port of the programming cable")
	flag.StringVar(&flagModel, "model", "", "Radio model to clone (see -models)")
	flag.StringVar(&flagDownload, "download", "", "Read the radio's memory into this file")
	flag.StringVar(&flagUpload, "upload", "", "Write this image file to the radio")
	flag.StringVar(&flagConfig, "config", "", "Config file path (default ~/.config/rigclone/config.yaml)")
	flag.StringVar(&flagProfiles, "profiles", "", "Extra profile definitions YAML file")
	flag.BoolVar(&flagList, "list", false, "List likely programming cables and exit")
	flag.BoolVar(&flagModels, "models", false, "List supported radio models and exit")
	flag.BoolVar(&flagDebug, "debug", false, "Enable protocol debug output")
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.Fatalf("rigclone-tool: %v", err)
	}
}

func run() error {
	configPath := flagConfig
	explicit := configPath != ""
	if !explicit {
		configPath = defaultConfigPath()
	}
	cfg, err := loadConfig(configPath, explicit)
	if err != nil {
		return err
	}

	if closer := setupLogging(&cfg.Logging); closer != nil {
		defer closer.Close()
	}

	if flagDebug || cfg.Debug {
		rigclone.SetDebugEnabled(true)
	}

	// Flags override config file values.
	device := cfg.Device
	if flagDevice != "" {
		device = flagDevice
	}
	model := cfg.Model
	if flagModel != "" {
		model = flagModel
	}
	profilesPath := cfg.Profiles
	if flagProfiles != "" {
		profilesPath = flagProfiles
	}

	if profilesPath != "" {
		profiles, err := rigclone.LoadProfiles(profilesPath)
		if err != nil {
			return err
		}
		log.Printf("loaded %d profiles from %s", len(profiles), profilesPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case flagList:
		return listCables(ctx)
	case flagModels:
		return listModels()
	case flagDownload != "":
		return download(ctx, device, model, flagDownload)
	case flagUpload != "":
		return upload(ctx, device, model, flagUpload)
	default:
		flag.Usage()
		return errors.New("nothing to do: pass -list, -models, -download or -upload")
	}
}

// listCables prints detected programming-cable candidates.
func listCables(ctx context.Context) error {
	devices, err := detection.Detect(ctx, &detection.Options{IncludeUnknown: true})
	if err != nil {
		if errors.Is(err, detection.ErrNoDevicesFound) {
			fmt.Println("No serial ports found.")
			return nil
		}
		return err
	}
	for _, d := range devices {
		fmt.Println(d)
	}
	return nil
}

// listModels prints the registered radio models.
func listModels() error {
	for _, m := range rigclone.RegisteredModels() {
		fmt.Println(m)
	}
	return nil
}

// openSession opens the port and runs the clone-mode handshake.
func openSession(device, model string) (*rigclone.Session, *serial.Port, error) {
	if device == "" {
		return nil, nil, errors.New("no serial port given, use -device (try -list)")
	}
	if model == "" {
		return nil, nil, errors.New("no radio model given, use -model (try -models)")
	}

	profile, ok := rigclone.LookupProfile(model)
	if !ok {
		return nil, nil, fmt.Errorf("unknown radio model %q (try -models)", model)
	}

	port, err := serial.Open(device, profile)
	if err != nil {
		return nil, nil, err
	}

	session, err := rigclone.Open(port, profile,
		rigclone.WithPortName(device),
		rigclone.WithProgress(printProgress),
	)
	if err != nil {
		_ = port.Close()
		return nil, nil, err
	}
	return session, port, nil
}

// download clones the radio's memory into path.
func download(ctx context.Context, device, model, path string) error {
	session, port, err := openSession(device, model)
	if err != nil {
		return err
	}
	defer port.Close()

	image, err := session.Download(ctx)
	fmt.Println()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, image, 0o600); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	log.Printf("downloaded %d bytes from %s to %s", len(image), model, path)
	return nil
}

// upload clones an image file back to the radio.
func upload(ctx context.Context, device, model, path string) error {
	image, err := os.ReadFile(path) // #nosec G304 -- path comes from the user's own flag
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	session, port, err := openSession(device, model)
	if err != nil {
		return err
	}
	defer port.Close()

	err = session.Upload(ctx, image)
	fmt.Println()
	if err != nil {
		return err
	}
	log.Printf("uploaded %d bytes from %s to %s", len(image), path, model)
	return nil
}

// printProgress redraws a single status line per block.
func printProgress(p rigclone.Progress) {
	fmt.Printf("\r%s", p)
}
