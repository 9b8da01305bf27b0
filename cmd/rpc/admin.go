package rpc

import (
	"net/http"
	"os"
	"time"

	"github.com/canopy-network/ballot/lib"
	"github.com/julienschmidt/httprouter"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// AdvanceHeight commits the current block and moves to the requested height, or the next one if 0
func (s *Server) AdvanceHeight(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(heightRequest)
	if ok := unmarshal(w, r, req); !ok {
		return
	}
	s.query(w, func() (any, lib.ErrorI) {
		var (
			height uint64
			err    lib.ErrorI
		)
		if req.Height == 0 {
			height, err = s.controller.AdvanceHeight()
		} else {
			height, err = s.controller.AdvanceTo(req.Height)
		}
		if err != nil {
			return nil, err
		}
		return &lib.HeightResult{Height: height}, nil
	})
}

// Config responds with the node configuration
func (s *Server) Config(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	write(w, s.config, http.StatusOK)
}

// ResourceUsage retrieves node resource usage
func (s *Server) ResourceUsage(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	pm, err := mem.VirtualMemory() // os memory
	if err != nil {
		write(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cp, err := cpu.Percent(0, false) // os cpu percent
	if err != nil || len(cp) == 0 {
		write(w, "cpu usage unavailable", http.StatusInternalServerError)
		return
	}
	d, err := disk.Usage(s.config.DataDirPath) // disk holding the database
	if err != nil {
		write(w, err.Error(), http.StatusInternalServerError)
		return
	}
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		write(w, err.Error(), http.StatusInternalServerError)
		return
	}
	usage := ProcessResourceUsage{}
	// process stats are best effort as not every platform exposes all of them
	usage.Name, _ = p.Name()
	if status, e := p.Status(); e == nil && len(status) != 0 {
		usage.Status = status[0]
	}
	if utc, e := p.CreateTime(); e == nil {
		usage.CreateTime = time.UnixMilli(utc).Format(time.RFC822)
	}
	if fds, e := p.NumFDs(); e == nil {
		usage.FDCount = uint64(fds)
	}
	if threads, e := p.NumThreads(); e == nil {
		usage.ThreadCount = uint64(threads)
	}
	if memPercent, e := p.MemoryPercent(); e == nil {
		usage.MemoryPercent = float64(memPercent)
	}
	usage.CPUPercent, _ = p.CPUPercent()
	write(w, resourceUsageResponse{
		Process: usage,
		System: SystemResourceUsage{
			TotalRAM:        pm.Total,
			AvailableRAM:    pm.Available,
			UsedRAM:         pm.Used,
			UsedRAMPercent:  pm.UsedPercent,
			UsedCPUPercent:  cp[0],
			TotalDisk:       d.Total,
			UsedDisk:        d.Used,
			UsedDiskPercent: d.UsedPercent,
			FreeDisk:        d.Free,
		},
	}, http.StatusOK)
}
