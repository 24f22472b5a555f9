package web

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rkjdid/util"
)

// SpeedLog is one speed test result, saved as a toml file in Config.LogDir.
type SpeedLog struct {
	Time      time.Time
	Transport string
	Device    string
	Count     int
	Elapsed   util.Duration
	Rate      float64 // bytes per second

	// Name is the file name under Config.LogDir.
	Name string `toml:"-"`
}

func NewSpeedLog(transport, device string, count int, elapsed time.Duration) SpeedLog {
	sl := SpeedLog{
		Time:      time.Now(),
		Transport: transport,
		Device:    device,
		Count:     count,
		Elapsed:   util.Duration(elapsed),
	}
	if elapsed > 0 {
		sl.Rate = float64(count) / elapsed.Seconds()
	}
	sl.Name = sl.FileName()
	return sl
}

func (sl SpeedLog) String() string {
	return sl.Path()
}

// Path is the log's file name, relative to the log dir.
func (sl SpeedLog) Path() string {
	if len(sl.Name) > 0 {
		return sl.Name
	}
	return sl.FileName()
}

func (sl SpeedLog) FileName() string {
	return fmt.Sprintf("speed_%s_%d_%s.log",
		sl.Transport,
		sl.Count,
		sl.Time.Format("2006-01-02_15h04m05.000"))
}

// Save writes sl to dir, creating it if needed.
func (sl SpeedLog) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return util.WriteTomlFile(sl, filepath.Join(dir, sl.Path()))
}

// ListSpeedLogs parses every log in dir, oldest first.
// A missing dir is an empty list.
func ListSpeedLogs(dir string) ([]SpeedLog, error) {
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var logs []SpeedLog
	for _, fi := range files {
		var sl SpeedLog
		err = util.ReadTomlFile(&sl, filepath.Join(dir, fi.Name()))
		if err != nil {
			log.Printf("error parsing speed log: %s", err)
			continue
		}
		sl.Name = fi.Name()
		logs = append(logs, sl)
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Time.Before(logs[j].Time)
	})
	return logs, nil
}
