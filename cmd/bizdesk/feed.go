package main

import (
	"io"
	"sync"

	"github.com/jmylchreest/bizdesk/internal/adapter/output"
	"github.com/jmylchreest/bizdesk/internal/model"
	"github.com/jmylchreest/bizdesk/internal/toast"
)

// feedPrinter writes each toast to w once, as soon as it appears in the queue.
type feedPrinter struct {
	manager   *toast.Manager
	ch        <-chan []model.Notification
	w         io.Writer
	formatter output.Formatter
	seen      map[string]bool
	done      chan struct{}
	stopOnce  sync.Once
}

func startFeedPrinter(manager *toast.Manager, w io.Writer) *feedPrinter {
	formatter, _ := output.NewPlainFormatter(output.DefaultFormatterOptions())
	p := &feedPrinter{
		manager:   manager,
		ch:        manager.Subscribe(),
		w:         w,
		formatter: formatter,
		seen:      make(map[string]bool),
		done:      make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *feedPrinter) run() {
	defer close(p.done)
	for snapshot := range p.ch {
		var fresh []model.Notification
		for _, n := range snapshot {
			if !p.seen[n.ID] {
				p.seen[n.ID] = true
				fresh = append(fresh, n)
			}
		}
		if len(fresh) > 0 {
			_ = p.formatter.FormatNotifications(p.w, fresh)
		}
	}
}

// Stop unsubscribes and waits until the last snapshot has been printed.
func (p *feedPrinter) Stop() {
	p.stopOnce.Do(func() {
		p.manager.Unsubscribe(p.ch)
		<-p.done
	})
}
