package executor

import (
	"context"
	"fmt"
	"log"

	"github.com/mr-tron/base58"

	"solana-copy-trader/internal/solana"
)

// RPCSubmitter assembles, signs, submits, and confirms swap
// transactions over a Solana RPC client.
type RPCSubmitter struct {
	rpc    solana.RPCClient
	logger *log.Logger
}

var _ Submitter = (*RPCSubmitter)(nil)

// NewRPCSubmitter creates a submitter over rpc.
func NewRPCSubmitter(rpc solana.RPCClient, logger *log.Logger) (*RPCSubmitter, error) {
	if rpc == nil {
		return nil, fmt.Errorf("rpc client is required")
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[submit] ", log.LstdFlags)
	}
	return &RPCSubmitter{rpc: rpc, logger: logger}, nil
}

// Submit builds the swap transaction for one attempt, signs it with the
// follower's key, sends it, and blocks on confirmation. On-chain
// failures surface as *solana.TransactionError from confirmation.
func (s *RPCSubmitter) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	blockhash, err := s.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("get blockhash: %w", err)
	}

	data, err := req.Market.BuildSwapInstruction(req.AmountIn, req.SlippagePct)
	if err != nil {
		return "", fmt.Errorf("build instruction: %w", err)
	}

	message, err := buildSwapMessage(req.Signer.PublicKey(), req.Market.Address, req.Market.ProgramID, blockhash, data)
	if err != nil {
		return "", fmt.Errorf("build message: %w", err)
	}

	sig, err := req.Signer.Sign(message)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}

	tx := make([]byte, 0, 1+len(sig)+len(message))
	tx = appendCompactU16(tx, 1)
	tx = append(tx, sig...)
	tx = append(tx, message...)

	signature, err := s.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	if err := s.rpc.ConfirmTransaction(ctx, signature); err != nil {
		return "", err
	}
	return signature, nil
}

// buildSwapMessage serializes a legacy transaction message with three
// accounts: the fee-paying follower (writable signer), the pool
// (writable), and the AMM program (readonly).
func buildSwapMessage(payer, pool, programID, blockhash string, data []byte) ([]byte, error) {
	payerBytes, err := decodeKey(payer, "payer")
	if err != nil {
		return nil, err
	}
	poolBytes, err := decodeKey(pool, "pool")
	if err != nil {
		return nil, err
	}
	programBytes, err := decodeKey(programID, "program")
	if err != nil {
		return nil, err
	}
	hashBytes, err := decodeKey(blockhash, "blockhash")
	if err != nil {
		return nil, err
	}

	// Header: 1 required signature, 0 readonly signed accounts,
	// 1 readonly unsigned account (the program).
	msg := []byte{1, 0, 1}

	msg = appendCompactU16(msg, 3)
	msg = append(msg, payerBytes...)
	msg = append(msg, poolBytes...)
	msg = append(msg, programBytes...)

	msg = append(msg, hashBytes...)

	msg = appendCompactU16(msg, 1)
	msg = append(msg, 2) // program index
	msg = appendCompactU16(msg, 2)
	msg = append(msg, 0, 1) // payer, pool
	msg = appendCompactU16(msg, uint16(len(data)))
	msg = append(msg, data...)

	return msg, nil
}

func decodeKey(encoded, what string) ([]byte, error) {
	decoded, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", what, encoded, err)
	}
	if len(decoded) != 32 {
		return nil, fmt.Errorf("%s %s: length %d, want 32", what, encoded, len(decoded))
	}
	return decoded, nil
}

// appendCompactU16 appends v in the compact-u16 length encoding used by
// the Solana wire format.
func appendCompactU16(buf []byte, v uint16) []byte {
	for {
		if v < 0x80 {
			return append(buf, byte(v))
		}
		buf = append(buf, byte(v&0x7f)|0x80)
		v >>= 7
	}
}
