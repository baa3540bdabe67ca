package driver

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openmachinelabs/productivity/internal/addressing"
	"github.com/openmachinelabs/productivity/internal/types"
)

// Sample is one polled tag value: raw register words for register tags,
// bit states for coil and discrete-input tags.
type Sample struct {
	Tag   types.Tag
	Words []uint16
	Bits  []bool
	At    time.Time
}

// Poller cyclically reads a set of tags through one client and publishes
// raw samples on a channel. Decoding words into typed values is the
// consumer's job.
type Poller struct {
	client   *Client
	tags     []types.Tag
	interval time.Duration
	logger   *zap.Logger
	updates  chan Sample
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

func NewPoller(client *Client, tags []types.Tag, interval time.Duration, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		client:   client,
		tags:     tags,
		interval: interval,
		logger:   logger,
		updates:  make(chan Sample, 64),
		stopChan: make(chan struct{}),
	}
}

// Updates delivers polled samples. Samples are dropped when the consumer
// falls behind the buffer.
func (p *Poller) Updates() <-chan Sample {
	return p.updates
}

// Start startet das zyklische Polling.
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}

	p.running = true
	p.wg.Add(1)

	go p.pollLoop()

	p.logger.Info("Poller started",
		zap.String("client", p.client.ID.String()),
		zap.Int("tags", len(p.tags)),
		zap.Duration("interval", p.interval))

	return nil
}

// Stop stoppt das Polling.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	close(p.stopChan)
	p.wg.Wait()

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	p.logger.Info("Poller stopped", zap.String("client", p.client.ID.String()))
}

func (p *Poller) pollLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.PollOnce(context.Background())
		}
	}
}

// PollOnce reads every configured tag once, in order.
func (p *Poller) PollOnce(ctx context.Context) {
	for _, tag := range p.tags {
		sample, err := p.readTag(ctx, tag)
		if err != nil {
			p.logger.Error("Poll failed",
				zap.String("tag", tag.Name),
				zap.Error(err))
			continue
		}
		select {
		case p.updates <- sample:
		default:
			p.logger.Warn("Sample dropped, consumer too slow",
				zap.String("tag", tag.Name))
		}
	}
}

func (p *Poller) readTag(ctx context.Context, tag types.Tag) (Sample, error) {
	address, err := addressing.WireAddress(tag)
	if err != nil {
		return Sample{}, err
	}

	sample := Sample{Tag: tag, At: time.Now()}
	switch tag.Category {
	case types.CategoryDiscreteOutput:
		sample.Bits, err = p.client.ReadCoils(ctx, address, 1)
	case types.CategoryDiscreteInput:
		sample.Bits, err = p.client.ReadDiscreteInputs(ctx, address, 1)
	default:
		sample.Words, err = p.client.ReadRegisters(ctx, int(address), tag.Width, tag.Category, MaxReadChunk)
	}
	if err != nil {
		return Sample{}, err
	}
	return sample, nil
}

// IsRunning gibt an ob der Poller läuft.
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
