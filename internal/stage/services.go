package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jorge-barreto/conduct/internal/flow"
	"github.com/jorge-barreto/conduct/internal/ux"
)

// ServiceCheck inspects the ports the design assigns to each service slot
// and records which are already bound. Simple projects are a no-op.
func (s *Stages) ServiceCheck(ctx context.Context, st *flow.State) error {
	if st.ProjectKind != flow.KindFullStack {
		ux.StageResult("services", "skipped (simple project)")
		return nil
	}

	services := map[string]flow.ServiceEntry{}
	for _, slot := range []string{"backend", "frontend"} {
		port := servicePort(st, slot)
		if port == 0 {
			continue
		}
		status := "ready_to_start"
		if s.rt.Probe.PortOpen("localhost", port) {
			status = "running"
		}
		services[slot] = flow.ServiceEntry{Port: port, Status: status}
	}

	st.ServicesStatus = flow.ServicesStatus{
		Known:    true,
		Healthy:  true,
		Services: services,
	}
	ux.StageResult("services", fmt.Sprintf("%d service slot(s)", len(services)))
	return nil
}

// servicePort resolves a service slot's port: the design's assignment wins,
// the record's configured ports back it up.
func servicePort(st *flow.State, slot string) int {
	if p := st.Design.Sub("deployment").Sub("ports").GetInt(slot); p != 0 {
		return p
	}
	switch slot {
	case "backend":
		return st.Ports.Backend
	case "frontend":
		return st.Ports.Frontend
	}
	return 0
}

// Preview assembles the terminal summary: URLs, service state, and the
// generated file listing, attached to the control document.
func (s *Stages) Preview(ctx context.Context, st *flow.State) error {
	info := flow.Document{
		"status":       "deployed",
		"project_type": string(st.ProjectKind),
	}

	urls := map[string]any{}
	if st.ProjectKind == flow.KindFullStack {
		if p := servicePort(st, "backend"); p != 0 {
			urls["backend"] = fmt.Sprintf("http://localhost:%d", p)
			urls["api_health"] = fmt.Sprintf("http://localhost:%d/health", p)
		}
		if p := servicePort(st, "frontend"); p != 0 {
			urls["frontend"] = fmt.Sprintf("http://localhost:%d", p)
		}
		info["services"] = st.ServicesStatus
	} else {
		urls["local"] = "Code ready for execution"
	}
	info["urls"] = urls

	if files, err := s.rt.FS.ListFiles(st.ProjectDir); err == nil {
		info["generated_files"] = strings.Join(files, "\n")
	} else {
		info["generated_files"] = "Could not list files"
	}

	st.Control.PreviewInfo = info
	ux.StageResult("preview", fmt.Sprintf("%s project ready", st.ProjectKind))
	return nil
}
