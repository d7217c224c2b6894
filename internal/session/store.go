package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"prism-cli/internal/message"

	"github.com/google/uuid"
)

// Record 是一次会话的落盘形态：消息列表带媒体块一起序列化，
// 恢复后无需重新分段即可渲染。
type Record struct {
	ID       string            `json:"id"`
	Messages []message.Message `json:"messages"`
	Updated  time.Time         `json:"updated"`
}

func dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".prism", "sessions"), nil
}

// Save 持久化一次会话，id 为空时分配新 ID。返回实际使用的 ID。
func Save(id string, messages []message.Message) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	d, err := dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return "", err
	}
	rec := Record{ID: id, Messages: messages, Updated: time.Now()}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(d, id+".json"), data, 0o644); err != nil {
		return "", err
	}
	return id, nil
}

func Load(id string) (Record, error) {
	var rec Record
	d, err := dir()
	if err != nil {
		return rec, err
	}
	data, err := os.ReadFile(filepath.Join(d, id+".json"))
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// Last 返回最近更新的会话。
func Last() (Record, error) {
	ids, err := ListIDs()
	if err != nil {
		return Record{}, err
	}
	if len(ids) == 0 {
		return Record{}, fmt.Errorf("no sessions found")
	}
	var latest Record
	for _, id := range ids {
		rec, err := Load(id)
		if err != nil {
			continue
		}
		if rec.Updated.After(latest.Updated) {
			latest = rec
		}
	}
	if latest.ID == "" {
		return Record{}, fmt.Errorf("no readable sessions found")
	}
	return latest, nil
}

func ListIDs() ([]string, error) {
	d, err := dir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		ids = append(ids, e.Name()[:len(e.Name())-len(".json")])
	}
	sort.Strings(ids)
	return ids, nil
}
