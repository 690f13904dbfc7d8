package chromedpimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/orgball2608/insta-feed-harvester/internal/browser"
	"github.com/orgball2608/insta-feed-harvester/pkg/config"
	"github.com/orgball2608/insta-feed-harvester/pkg/logger"
	"go.uber.org/fx"
)

// SessionImpl drives one Chrome tab over the DevTools protocol. It prefers
// attaching to an already-running, already-authenticated Chrome instance
// (remote debugging), falling back to launching a headful instance itself.
type SessionImpl struct {
	ctx             context.Context
	logger          logger.Logger
	pageLoadTimeout time.Duration
	selectorTimeout time.Duration
	delayMin        time.Duration
	delayMax        time.Duration
	rnd             *rand.Rand
}

type Opts struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config
	Logger logger.Logger
}

var _ browser.Session = (*SessionImpl)(nil)

func New(opts Opts) *SessionImpl {
	log := opts.Logger.WithComponent("Browser")

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.Config.Browser.CdpUrl != "" {
		log.Info("Attaching to running Chrome over CDP", "url", opts.Config.Browser.CdpUrl)
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), opts.Config.Browser.CdpUrl)
	} else {
		log.Info("Launching a new Chrome instance")
		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", false),
			chromedp.Flag("start-maximized", true),
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), allocOpts...)
	}

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	opts.LC.Append(fx.Hook{
		OnStop: func(context.Context) error {
			tabCancel()
			allocCancel()
			return nil
		},
	})

	return &SessionImpl{
		ctx:             tabCtx,
		logger:          log,
		pageLoadTimeout: opts.Config.Browser.PageLoadTimeout,
		selectorTimeout: opts.Config.Browser.SelectorTimeout,
		delayMin:        opts.Config.Scanner.RandomDelayMin,
		delayMax:        opts.Config.Scanner.RandomDelayMax,
		rnd:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// run executes actions against the tab with a bounded deadline, translating
// deadline expiry into browser.ErrTimeout.
func (s *SessionImpl) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w: %v", browser.ErrTimeout, err)
		}
		return err
	}
	return nil
}

func (s *SessionImpl) Navigate(ctx context.Context, url string) error {
	err := s.run(ctx, s.pageLoadTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return err
	}
	s.SettleDelay()
	return nil
}

func (s *SessionImpl) ScrollDown(ctx context.Context, count int) error {
	for i := 0; i < count; i++ {
		if err := s.Evaluate(ctx, "window.scrollBy(0, window.innerHeight)", nil); err != nil {
			return err
		}
		s.SettleDelay()
	}
	return nil
}

func (s *SessionImpl) QueryAll(ctx context.Context, expr string) ([]browser.Handle, error) {
	var nodes []*cdp.Node
	sel, opt := bySelector(expr)
	err := s.run(ctx, s.selectorTimeout,
		chromedp.Nodes(sel, &nodes, opt, chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, err
	}

	handles := make([]browser.Handle, 0, len(nodes))
	for _, n := range nodes {
		handles = append(handles, browser.Handle{ID: int64(n.BackendNodeID)})
	}
	return handles, nil
}

func (s *SessionImpl) Query(ctx context.Context, expr string) (*browser.Handle, error) {
	handles, err := s.QueryAll(ctx, expr)
	if err != nil {
		return nil, err
	}
	if len(handles) == 0 {
		return nil, nil
	}
	return &handles[0], nil
}

func bySelector(expr string) (string, chromedp.QueryOption) {
	if strings.HasPrefix(expr, browser.XPathPrefix) {
		return strings.TrimPrefix(expr, browser.XPathPrefix), chromedp.BySearch
	}
	return expr, chromedp.ByQueryAll
}

func (s *SessionImpl) Evaluate(ctx context.Context, script string, out any) error {
	return s.run(ctx, s.selectorTimeout, chromedp.Evaluate(script, out))
}

func (s *SessionImpl) EvaluateOn(ctx context.Context, h browser.Handle, fnDecl string, out any) error {
	return s.run(ctx, s.selectorTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().
			WithBackendNodeID(cdp.BackendNodeID(h.ID)).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("resolve node: %w", err)
		}
		defer func() {
			_ = runtime.ReleaseObject(obj.ObjectID).Do(ctx)
		}()

		res, exc, err := runtime.CallFunctionOn(fnDecl).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return fmt.Errorf("script exception: %s", exc.Error())
		}
		if out == nil || res == nil || res.Value == nil {
			return nil
		}
		return json.Unmarshal(res.Value, out)
	}))
}

func (s *SessionImpl) Click(ctx context.Context, h browser.Handle) error {
	return s.EvaluateOn(ctx, h,
		`function() { this.scrollIntoView({block: "center"}); this.click(); }`, nil)
}

func (s *SessionImpl) Attribute(ctx context.Context, h browser.Handle, name string) (string, error) {
	var value *string
	fn := fmt.Sprintf(`function() { return this.getAttribute(%q); }`, name)
	if err := s.EvaluateOn(ctx, h, fn, &value); err != nil {
		return "", err
	}
	if value == nil {
		return "", nil
	}
	return *value, nil
}

func (s *SessionImpl) InnerText(ctx context.Context, h browser.Handle) (string, error) {
	var text string
	if err := s.EvaluateOn(ctx, h, `function() { return this.innerText || ""; }`, &text); err != nil {
		return "", err
	}
	return text, nil
}

func (s *SessionImpl) WaitVisible(ctx context.Context, expr string, timeout time.Duration) error {
	sel, opt := bySelector(expr)
	return s.run(ctx, timeout, chromedp.WaitVisible(sel, opt))
}

func (s *SessionImpl) KeyPress(ctx context.Context, key string) error {
	if key == "Escape" {
		key = kb.Escape
	}
	return s.run(ctx, s.selectorTimeout, chromedp.KeyEvent(key))
}

func (s *SessionImpl) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := s.run(ctx, s.pageLoadTimeout, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

func (s *SessionImpl) SettleDelay() {
	min, max := s.delayMin, s.delayMax
	if max <= min {
		time.Sleep(min)
		return
	}
	time.Sleep(min + time.Duration(s.rnd.Int63n(int64(max-min))))
}
