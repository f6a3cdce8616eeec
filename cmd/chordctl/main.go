// Command chordctl is a thin HTTP client for a chordnode's client-facing
// surface: upload, download, delete, list, and info, for manual operation
// and scripting against a running ring.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: chordctl -node host:port <upload|download|delete|list|info> [name] [file]")
	flag.PrintDefaults()
}

func main() {
	node := flag.String("node", "127.0.0.1:5000", "address of a node's client surface")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	client := &http.Client{Timeout: *timeout}
	base := fmt.Sprintf("http://%s", *node)

	var err error
	switch cmd := args[0]; cmd {
	case "upload":
		if len(args) < 3 {
			err = fmt.Errorf("upload requires a name and a source file")
			break
		}
		err = upload(client, base, args[1], args[2])
	case "download":
		if len(args) < 3 {
			err = fmt.Errorf("download requires a name and a destination file")
			break
		}
		err = download(client, base, args[1], args[2])
	case "delete":
		if len(args) < 2 {
			err = fmt.Errorf("delete requires a name")
			break
		}
		err = deleteFile(client, base, args[1])
	case "list":
		err = list(client, base)
	case "info":
		err = info(client, base)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "chordctl:", err)
		os.Exit(1)
	}
}

func upload(client *http.Client, base, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/files/%s", base, name), f)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp, "upload")
}

func download(client *http.Client, base, name, path string) error {
	resp, err := client.Get(fmt.Sprintf("%s/files/%s", base, name))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, "download"); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func deleteFile(client *http.Client, base, name string) error {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/files/%s", base, name), nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp, "delete")
}

func list(client *http.Client, base string) error {
	resp, err := client.Get(base + "/files")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, "list"); err != nil {
		return err
	}
	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func info(client *http.Client, base string) error {
	resp, err := client.Get(base + "/info")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, "info"); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	encoded, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: not found", op)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, string(body))
	}
	return nil
}
