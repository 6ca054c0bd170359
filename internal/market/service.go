package market

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service 聚合K线及盘口数据获取。
type Service struct {
	client *Client
	logger *zap.Logger
}

// NewService 创建市场数据服务。
func NewService(client *Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client: client,
		logger: logger,
	}
}

// GetSnapshot 并行拉取15分钟、1小时K线及订单簿，组装为市场快照。
func (s *Service) GetSnapshot(ctx context.Context, req SnapshotRequest) (Snapshot, error) {
	defaultReq := DefaultSnapshotRequest()
	if req.Limit15M <= 0 {
		req.Limit15M = defaultReq.Limit15M
	}
	if req.Limit1H <= 0 {
		req.Limit1H = defaultReq.Limit1H
	}
	if req.OrderBookDepth <= 0 {
		req.OrderBookDepth = defaultReq.OrderBookDepth
	}

	var (
		candles15M []Candle
		candles1H  []Candle
		orderBook  OrderBookSnapshot
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		data, err := s.client.FetchCandles(groupCtx, Timeframe15m, int64(req.Limit15M))
		if err != nil {
			return err
		}
		candles15M = data
		return nil
	})

	group.Go(func() error {
		data, err := s.client.FetchCandles(groupCtx, Timeframe1h, int64(req.Limit1H))
		if err != nil {
			return err
		}
		candles1H = data
		return nil
	})

	group.Go(func() error {
		book, err := s.client.FetchOrderBook(groupCtx, int64(req.OrderBookDepth))
		if err != nil {
			return err
		}
		orderBook = book
		return nil
	})

	if err := group.Wait(); err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{
		Symbol:      s.client.Symbol(),
		Candles15M:  candles15M,
		Candles1H:   candles1H,
		OrderBook:   orderBook,
		RetrievedAt: time.Now().UTC(),
	}

	s.logger.Debug("市场数据快照获取完成",
		zap.String("symbol", snapshot.Symbol),
		zap.Time("retrieved_at", snapshot.RetrievedAt),
		zap.Int("candle_15m_count", len(snapshot.Candles15M)),
		zap.Int("candle_1h_count", len(snapshot.Candles1H)),
		zap.Int("order_book_bids", len(snapshot.OrderBook.Bids)),
	)

	return snapshot, nil
}
