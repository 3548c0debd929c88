package sqlinline

// QUpsertGoogleUser creates or refreshes the user row for a verified Google
// identity and guarantees a profile row with the starting credit balance.
const QUpsertGoogleUser = `--sql d44daa4c-8853-4978-8fc6-f6fea2382966
with incoming as (
    select
        $1::text as google_sub,
        $2::text as email,
        $3::text as name,
        $4::text as picture
),
upserted as (
    insert into users (id, google_sub, email, name, avatar_url, created_at, updated_at)
    values (gen_random_uuid(), (select google_sub from incoming), (select email from incoming),
            (select name from incoming), (select picture from incoming), now(), now())
    on conflict (email) do update set
        name = excluded.name,
        avatar_url = excluded.avatar_url,
        google_sub = excluded.google_sub,
        updated_at = now()
    returning id
),
profile as (
    insert into profiles (user_id, credits, plan_type, plan_expiry, created_at, updated_at)
    values ((select id from upserted), 50, 'free', null, now(), now())
    on conflict (user_id) do nothing
)
select id from upserted;
`

// QSelectUserStatus returns the caller's entitlement snapshot. has_active_plan
// is derived in SQL so the API and the credit gate agree on the clock.
const QSelectUserStatus = `--sql 50a26003-abb7-4ba1-be7d-663915290da0
select
    p.credits,
    p.plan_type,
    p.plan_expiry,
    (p.plan_type <> 'free' and p.plan_expiry is not null and p.plan_expiry > now()) as has_active_plan
from profiles p
where p.user_id = $1::uuid
limit 1;
`

// QChargeCredits is the atomic conditional decrement. The WHERE clause makes
// check-and-subtract a single statement: concurrent charges against the same
// balance cannot both succeed, and the balance never goes negative.
const QChargeCredits = `--sql 5495d4a4-86bd-4113-a1b3-39068944f22a
update profiles
set credits = credits - $2::int,
    updated_at = now()
where user_id = $1::uuid
  and credits >= $2::int
returning credits;
`

// QGrantPlan upgrades the profile to a paid plan with a fresh expiry.
const QGrantPlan = `--sql 6754a19b-ae29-4759-a116-e231d92f9860
update profiles
set plan_type = $2::text,
    plan_expiry = $3::timestamptz,
    updated_at = now()
where user_id = $1::uuid
returning plan_type, plan_expiry;
`

// QSelectUserByID joins the identity and billing rows for the account screen.
const QSelectUserByID = `--sql f2672088-9ce5-4d1d-927b-5d51c20e9c23
select u.id, u.email, u.name, coalesce(u.avatar_url, ''), p.credits, p.plan_type, p.plan_expiry,
       (p.plan_type <> 'free' and p.plan_expiry is not null and p.plan_expiry > now()) as has_active_plan
from users u
join profiles p on p.user_id = u.id
where u.id = $1::uuid
limit 1;
`
