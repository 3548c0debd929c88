package sqlinline

// QInsertPendingPayment records a freshly minted provider order. Runs only
// after the provider call succeeded, so a failed order leaves no local row.
const QInsertPendingPayment = `--sql e74ca4a6-fd9f-45d8-afd9-6a5064724f05
insert into payments (id, user_id, amount, currency, plan_type, order_id, payment_status, created_at, updated_at)
values (gen_random_uuid(), $1::uuid, $2::bigint, $3::text, $4::text, $5::text, 'pending', now(), now())
returning id;
`

// QCompletePayment flips a pending order to completed. The status guard makes
// verification idempotent: a replay of the same order matches zero rows and
// must not grant the plan a second time.
const QCompletePayment = `--sql cc33f75b-8ad2-4d57-9818-71c22c0c5077
update payments
set payment_id = $3::text,
    payment_status = 'completed',
    updated_at = now()
where order_id = $1::text
  and user_id = $2::uuid
  and payment_status = 'pending'
returning id, plan_type;
`

// QSelectPaymentByOrder resolves an order for checkout status polling.
const QSelectPaymentByOrder = `--sql cd8e62ec-a7ed-4d81-ae7f-30e73ed0bc85
select id, user_id, amount, currency, plan_type, order_id, coalesce(payment_id, ''), payment_status, created_at
from payments
where order_id = $1::text
limit 1;
`
