package skypost

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"skyarea/internal/services"
)

const (
	snapshotMagic   = "SKYPOST\x00"
	snapshotVersion = 1
)

type snapshot struct {
	Version   int          `json:"version"`
	K         int          `json:"k"`
	AreaNside int          `json:"area_nside"`
	Points    [][2]float64 `json:"points"`
	Assign    []int        `json:"assign"`
}

// Save writes a compressed snapshot of a ClusteredKDE posterior.
func (e *KDEEngine) Save(w io.Writer, p Posterior) error {
	post, ok := p.(*ClusteredKDE)
	if !ok {
		return fmt.Errorf("skypost: cannot snapshot posterior of type %T", p)
	}
	payload, err := json.Marshal(snapshot{
		Version:   snapshotVersion,
		K:         post.k,
		AreaNside: post.areaNside,
		Points:    post.pts,
		Assign:    post.assign,
	})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if _, err := io.WriteString(w, snapshotMagic); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return fmt.Errorf("create snapshot compressor: %w", err)
	}
	if _, err := enc.Write(payload); err != nil {
		_ = enc.Close()
		return fmt.Errorf("compress snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot written by Save and refits its kernels.
func (e *KDEEngine) Load(r io.Reader) (Posterior, error) {
	br := bufio.NewReader(r)
	header := make([]byte, len(snapshotMagic))
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, services.Wrap(services.ErrDeserialize, "skypost", "load", "read header", err)
	}
	if !bytes.Equal(header, []byte(snapshotMagic)) {
		return nil, services.Wrap(services.ErrDeserialize, "skypost", "load", "not a sky posterior snapshot", nil)
	}

	dec, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, services.Wrap(services.ErrDeserialize, "skypost", "load", "create decompressor", err)
	}
	defer dec.Close()

	var snap snapshot
	if err := json.NewDecoder(dec).Decode(&snap); err != nil {
		return nil, services.Wrap(services.ErrDeserialize, "skypost", "load", "decode payload", err)
	}
	if snap.Version != snapshotVersion {
		return nil, services.Wrap(services.ErrDeserialize, "skypost", "load", fmt.Sprintf("unsupported snapshot version %d", snap.Version), nil)
	}
	if snap.AreaNside <= 0 || snap.K <= 0 {
		return nil, services.Wrap(services.ErrDeserialize, "skypost", "load", "snapshot header is incomplete", nil)
	}

	post, err := newClusteredKDE(snap.Points, snap.Assign, snap.K, snap.AreaNside)
	if err != nil {
		return nil, services.Wrap(services.ErrDeserialize, "skypost", "load", "rebuild kernels", err)
	}
	return post, nil
}
