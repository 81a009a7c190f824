package dropbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/damilare-ak/clinicnote/constants"
	"github.com/damilare-ak/clinicnote/internal/common"
)

// FileEntry describes one remote file.
type FileEntry struct {
	Path     string
	Name     string
	Modified time.Time
	Size     int64
}

// Client talks to the remote file storage API. The cursor for change
// notifications is internal state, invalidated on long-poll transport errors
// so the next poll starts from a fresh listing.
type Client struct {
	cfg    common.DropboxConfig
	http   *http.Client
	logger *slog.Logger

	apiBase     string
	contentBase string
	notifyBase  string

	mu     sync.Mutex
	cursor string
}

func NewClient(cfg common.DropboxConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:         cfg,
		http:        httpClient,
		logger:      logger,
		apiBase:     "https://api.dropboxapi.com",
		contentBase: "https://content.dropboxapi.com",
		notifyBase:  "https://notify.dropboxapi.com",
	}
}

func (c *Client) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.cfg.Token}
}

type listEntry struct {
	Tag            string    `json:".tag"`
	Name           string    `json:"name"`
	PathDisplay    string    `json:"path_display"`
	ServerModified time.Time `json:"server_modified"`
	Size           int64     `json:"size"`
}

// ListFolder lists the configured folder. A transport or API error yields an
// empty list after logging; the watcher must keep running through outages.
func (c *Client) ListFolder(ctx context.Context) []FileEntry {
	body := map[string]any{"path": c.cfg.Folder, "recursive": false}
	raw, status, err := common.SendJSON(ctx, c.http, http.MethodPost, c.apiBase+"/2/files/list_folder", body, c.authHeaders(), c.logger)
	if err != nil {
		c.logger.Warn("dropbox.list.failed", "folder", c.cfg.Folder, "status", status, "error", err)
		return nil
	}

	var lr struct {
		Entries []listEntry `json:"entries"`
	}
	if err := json.Unmarshal(raw, &lr); err != nil {
		c.logger.Warn("dropbox.list.decode_failed", "error", err)
		return nil
	}

	entries := make([]FileEntry, 0, len(lr.Entries))
	for _, e := range lr.Entries {
		if e.Tag != "file" {
			continue
		}
		entries = append(entries, FileEntry{
			Path:     e.PathDisplay,
			Name:     e.Name,
			Modified: e.ServerModified,
			Size:     e.Size,
		})
	}
	return entries
}

// GetNew returns the listed files modified after since whose extension is an
// accepted transcript type. A zero since returns every matching file.
func (c *Client) GetNew(ctx context.Context, since time.Time) ([]FileEntry, error) {
	var out []FileEntry
	for _, e := range c.ListFolder(ctx) {
		ext := constants.NormalizeExt(filepath.Ext(e.Name))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			continue
		}
		if !since.IsZero() && !e.Modified.After(since) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Download streams a remote file to localPath.
func (c *Client) Download(ctx context.Context, remotePath, localPath string) error {
	arg, err := json.Marshal(map[string]string{"path": remotePath})
	if err != nil {
		return fmt.Errorf("encode download arg: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.contentBase+"/2/files/download", nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Dropbox-API-Arg", string(arg))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", remotePath, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("dropbox.download.body_close_error", "error", err)
		}
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("download %s: status %d: %s", remotePath, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(localPath)
		return fmt.Errorf("write %s: %w", localPath, err)
	}
	return f.Close()
}

// LongPoll blocks until the folder changes or the configured timeout lapses.
// On transport error the cursor is invalidated, forcing a fresh listing on
// the next call instead of a blind retry against stale state.
func (c *Client) LongPoll(ctx context.Context) (bool, error) {
	cursor, err := c.ensureCursor(ctx)
	if err != nil {
		return false, err
	}

	body := map[string]any{
		"cursor":  cursor,
		"timeout": int(c.cfg.LongPollTimeout.Seconds()),
	}
	// The notify host takes no auth header.
	raw, status, err := common.SendJSON(ctx, c.http, http.MethodPost, c.notifyBase+"/2/files/list_folder/longpoll", body, nil, c.logger)
	if err != nil {
		c.invalidateCursor()
		return false, fmt.Errorf("longpoll: status %d: %w", status, err)
	}

	var pr struct {
		Changes bool `json:"changes"`
	}
	if err := json.Unmarshal(raw, &pr); err != nil {
		c.invalidateCursor()
		return false, fmt.Errorf("decode longpoll response: %w", err)
	}
	return pr.Changes, nil
}

func (c *Client) ensureCursor(ctx context.Context) (string, error) {
	c.mu.Lock()
	cursor := c.cursor
	c.mu.Unlock()
	if cursor != "" {
		return cursor, nil
	}

	body := map[string]any{"path": c.cfg.Folder, "recursive": false}
	raw, status, err := common.SendJSON(ctx, c.http, http.MethodPost, c.apiBase+"/2/files/list_folder/get_latest_cursor", body, c.authHeaders(), c.logger)
	if err != nil {
		return "", fmt.Errorf("get cursor: status %d: %w", status, err)
	}

	var cr struct {
		Cursor string `json:"cursor"`
	}
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("decode cursor response: %w", err)
	}
	c.mu.Lock()
	c.cursor = cr.Cursor
	c.mu.Unlock()
	return cr.Cursor, nil
}

func (c *Client) invalidateCursor() {
	c.mu.Lock()
	c.cursor = ""
	c.mu.Unlock()
}
