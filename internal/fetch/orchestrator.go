// Package fetch implements the Fetch Orchestrator (spec §4.E): it composes
// cliparse's pure parsers with cliengine's Dispatcher into refreshAll and
// getAllOnuData, publishing results to the Inventory Cache.
package fetch

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/nanoncore/ma5801-olt-manager/internal/capabilities"
	"github.com/nanoncore/ma5801-olt-manager/internal/cliengine"
	"github.com/nanoncore/ma5801-olt-manager/internal/cliparse"
	"github.com/nanoncore/ma5801-olt-manager/internal/inventory"
	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

// DefaultInterval is the periodic refresh cadence (spec §4.E, §6 env var
// OLT_REFRESH_INTERVAL default).
const DefaultInterval = 60 * time.Minute

// Session is the subset of *cliengine.Session the orchestrator drives. It
// is an interface so tests can fake the CLI without a real SSH transport.
type Session interface {
	Execute(command string) (string, error)
	EnterInterface(fs string) error
	LeaveInterface() error
	QuitConfig() error
	EnterConfig() error
}

// Orchestrator is the Fetch Orchestrator component.
type Orchestrator struct {
	cache *inventory.Cache
	caps  capabilities.MA5801Capabilities
	log   zerolog.Logger

	sessionMu sync.RWMutex
	session   Session
	port      string // the single GPON "F/S" this deployment manages, e.g. "0/1"

	statusMu sync.RWMutex
	status   model.RefreshStatus

	vlanMu         sync.Mutex
	pendingVlanOut string
	pendingVlanSet bool

	sf      singleflight.Group
	breaker *ScheduledRefreshBreaker

	stopOnce sync.Once
	stopC    chan struct{}
}

// New builds an Orchestrator bound to a single GPON slot. Bind/reconnect
// flows call SetSession when a new Session replaces a torn-down one.
func New(cache *inventory.Cache, caps capabilities.MA5801Capabilities, port string, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		cache:   cache,
		caps:    caps,
		port:    port,
		log:     log,
		breaker: NewScheduledRefreshBreaker(DefaultBreakerConfig()),
		stopC:   make(chan struct{}),
	}
}

// SetSession installs the live CLI session, e.g. after Connect or a
// reconnect. A nil session makes subsequent refreshes fail with
// Disconnected, matching the "no automatic reconnect" policy of spec §5.
func (o *Orchestrator) SetSession(s Session) {
	o.sessionMu.Lock()
	defer o.sessionMu.Unlock()
	o.session = s
}

// SeedVlanSample installs the `display vlan all` output Connect captured
// opportunistically in privileged mode, before config mode was entered.
// The next collect() call consumes it instead of re-issuing the command
// from config mode, where it refuses to run on some firmwares (spec
// §4.B/§4.E).
func (o *Orchestrator) SeedVlanSample(output string) {
	o.vlanMu.Lock()
	o.pendingVlanOut = output
	o.pendingVlanSet = true
	o.vlanMu.Unlock()
}

func (o *Orchestrator) currentSession() (Session, error) {
	o.sessionMu.RLock()
	defer o.sessionMu.RUnlock()
	if o.session == nil {
		return nil, cliengine.NewDisconnectedError("no active OLT session")
	}
	return o.session, nil
}

// Status returns the current RefreshStatus singleton.
func (o *Orchestrator) Status() model.RefreshStatus {
	o.statusMu.RLock()
	defer o.statusMu.RUnlock()
	return o.status
}

// GetOltInfo executes "display version" fresh on every call; OLTInfo is
// transient and never stored (spec §3).
func (o *Orchestrator) GetOltInfo() (model.OLTInfo, error) {
	sess, err := o.currentSession()
	if err != nil {
		return model.OLTInfo{Connected: false}, err
	}
	out, err := sess.Execute("display version")
	if err != nil {
		return model.OLTInfo{Connected: false}, err
	}
	return cliparse.ParseVersion(out), nil
}

// RefreshAll runs the full GPON subset and publishes the result to the
// Inventory Cache atomically. Only one refresh runs at a time: a second
// caller observes inProgress=true and should poll Status instead.
func (o *Orchestrator) RefreshAll() error {
	o.statusMu.Lock()
	if o.status.InProgress {
		o.statusMu.Unlock()
		return nil
	}
	o.status.InProgress = true
	o.status.Error = ""
	o.statusMu.Unlock()

	snap, err := o.collect()

	o.statusMu.Lock()
	o.status.InProgress = false
	if err != nil {
		o.status.Error = err.Error()
	} else {
		now := time.Now()
		o.status.LastRefreshed = &now
		o.status.Error = ""
	}
	o.statusMu.Unlock()

	if err != nil {
		return err
	}
	o.cache.Publish(*snap)
	return nil
}

// GetAllOnuData runs the same GPON subset as RefreshAll but coalesces
// concurrent callers onto a single in-flight execution via singleflight,
// per spec §4.C's "mutual exclusion for data-fetch operations".
func (o *Orchestrator) GetAllOnuData() error {
	_, err, _ := o.sf.Do("getAllOnuData", func() (interface{}, error) {
		return nil, o.RefreshAll()
	})
	return err
}

// collect walks the refreshAll command sequence from spec §4.E and
// returns a fully-populated Snapshot, or the first RefreshError
// encountered (partial results are always discarded).
func (o *Orchestrator) collect() (*inventory.Snapshot, error) {
	sess, err := o.currentSession()
	if err != nil {
		return nil, NewRefreshError("session", err)
	}

	if _, err := sess.Execute("display version"); err != nil {
		return nil, NewRefreshError("display version", err)
	}

	if err := sess.EnterInterface(o.port); err != nil {
		return nil, NewRefreshError("interface gpon "+o.port, err)
	}
	defer sess.LeaveInterface()

	autofindOut, err := o.runAutofind(sess)
	if err != nil {
		return nil, NewRefreshError("autofind", err)
	}
	unbound := cliparse.ParseAutofind(autofindOut, o.port)

	ontInfoOut, err := sess.Execute("display ont info 0 all")
	if err != nil {
		return nil, NewRefreshError("display ont info", err)
	}
	bound := cliparse.ParseOntInfo(ontInfoOut)

	opticalOut, err := sess.Execute("display ont optical-info 0 all")
	if err != nil {
		return nil, NewRefreshError("display ont optical-info", err)
	}
	samples := cliparse.ParseOpticalInfo(opticalOut)
	applyOptical(bound, samples)

	if err := sess.LeaveInterface(); err != nil {
		return nil, NewRefreshError("quit", err)
	}

	detailOut, err := sess.Execute("display ont info 0 all detail")
	if err != nil {
		return nil, NewRefreshError("display ont info detail", err)
	}
	applyDescriptions(bound, cliparse.ParseOntDetail(detailOut))

	lineOut, err := sess.Execute("display ont-lineprofile gpon all")
	if err != nil {
		return nil, NewRefreshError("display ont-lineprofile", err)
	}
	lineProfiles := cliparse.ParseLineProfiles(lineOut)

	srvOut, err := sess.Execute("display ont-srvprofile gpon all")
	if err != nil {
		return nil, NewRefreshError("display ont-srvprofile", err)
	}
	serviceProfiles := cliparse.ParseServiceProfiles(srvOut)

	vlans, err := o.fetchVlans(sess)
	if err != nil {
		return nil, NewRefreshError("display vlan all", err)
	}

	return &inventory.Snapshot{
		Unbound:         unbound,
		Bound:           bound,
		LineProfiles:    lineProfiles,
		ServiceProfiles: serviceProfiles,
		Vlans:           vlans,
	}, nil
}

// fetchVlans returns the parsed VLAN table, reusing Connect's initial
// capture if one is pending, else briefly quitting config to run the
// command in privileged mode and re-entering config afterward (spec
// §4.B/§4.E: `display vlan all` refuses to run inside config mode on
// some firmwares).
func (o *Orchestrator) fetchVlans(sess Session) ([]model.Vlan, error) {
	o.vlanMu.Lock()
	seed, hasSeed := o.pendingVlanOut, o.pendingVlanSet
	o.pendingVlanSet = false
	o.vlanMu.Unlock()

	if hasSeed {
		return cliparse.ParseVlanAll(seed), nil
	}

	if err := sess.QuitConfig(); err != nil {
		return nil, err
	}
	out, execErr := sess.Execute("display vlan all")
	if err := sess.EnterConfig(); err != nil && execErr == nil {
		execErr = err
	}
	if execErr != nil {
		return nil, execErr
	}
	return cliparse.ParseVlanAll(out), nil
}

// runAutofind issues the variant selected by the capability matrix,
// resolving the open question on whether "0" or "all" is the right
// argument for this firmware family (see DESIGN.md Open Question 2).
func (o *Orchestrator) runAutofind(sess Session) (string, error) {
	if o.caps.Autofind == capabilities.AutofindGlobal {
		return sess.Execute("display ont autofind all")
	}
	return sess.Execute("display ont autofind 0")
}

func applyOptical(bound []model.BoundOnu, samples []cliparse.OpticalSample) {
	byKey := make(map[string]cliparse.OpticalSample, len(samples))
	byID := make(map[int]cliparse.OpticalSample)
	for _, s := range samples {
		if s.Port != "" {
			byKey[fmt.Sprintf("%s#%d", s.Port, s.OnuID)] = s
		} else {
			byID[s.OnuID] = s
		}
	}
	for i := range bound {
		b := &bound[i]
		key := fmt.Sprintf("%s#%d", b.Port, b.OnuID)
		s, ok := byKey[key]
		if !ok {
			s, ok = byID[b.OnuID]
		}
		if !ok {
			continue
		}
		if s.HasRx {
			rx := s.RxPower
			b.RxPower = &rx
		}
		if s.HasTx {
			tx := s.TxPower
			b.TxPower = &tx
		}
	}
}

func applyDescriptions(bound []model.BoundOnu, records []cliparse.DescriptionRecord) {
	byKey := make(map[string]string, len(records))
	for _, r := range records {
		byKey[fmt.Sprintf("%s#%d", r.Port, r.OnuID)] = r.Description
	}
	for i := range bound {
		b := &bound[i]
		if desc, ok := byKey[fmt.Sprintf("%s#%d", b.Port, b.OnuID)]; ok {
			b.Description = desc
		}
	}
}

// StartScheduler runs RefreshAll every interval in a background goroutine,
// guarded by the scheduled-refresh breaker, until Stop is called. An
// operator-triggered refresh (RefreshAll called directly from an HTTP
// handler) always runs regardless of breaker state.
func (o *Orchestrator) StartScheduler(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-o.stopC:
				return
			case <-ticker.C:
				if !o.breaker.AllowScheduled() {
					o.log.Warn().Str("breaker", o.breaker.State()).Msg("scheduled refresh skipped: breaker open")
					continue
				}
				if err := o.RefreshAll(); err != nil {
					o.breaker.RecordFailure()
					o.log.Error().Err(err).Msg("scheduled refresh failed")
					continue
				}
				o.breaker.RecordSuccess()
			}
		}
	}()
}

// Stop ends the scheduler goroutine started by StartScheduler.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() { close(o.stopC) })
}
